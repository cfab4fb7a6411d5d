package applications

import "math"

const (
	sectionPoints     = 25
	documentPointsMax = 25
	documentPointsPer = 2.78

	// stepSubmitted is the top of the staircase; submission pins the
	// application there even when no documents are attached.
	stepSubmitted = 4
)

// CompletionScore derives the 0–100 intake completeness measure from the
// populated sections and the number of attached documents. It is a pure
// function of its inputs: recomputing with identical data yields the same
// score.
func CompletionScore(app *Application, documentCount int) int {
	score := 0
	if !app.PersonalInfo.Empty() {
		score += sectionPoints
	}
	if !app.ProfessionalBackground.Empty() {
		score += sectionPoints
	}
	if !app.TeachingInformation.Empty() {
		score += sectionPoints
	}
	if documentCount > 0 {
		pts := int(math.Floor(float64(documentCount) * documentPointsPer))
		if pts > documentPointsMax {
			pts = documentPointsMax
		}
		score += pts
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// CurrentStep derives the 0–4 progress staircase. Each step requires all the
// previous ones, and the value is always computed fresh from section state
// rather than incremented.
func CurrentStep(app *Application, documentCount int) int {
	step := 0
	if app.PersonalInfo.Empty() {
		return step
	}
	step = 1
	if app.ProfessionalBackground.Empty() {
		return step
	}
	step = 2
	if app.TeachingInformation.Empty() {
		return step
	}
	step = 3
	if documentCount > 0 {
		step = 4
	}
	return step
}

// recomputeProgress refreshes score and step in place.
func (a *Application) recomputeProgress(documentCount int) {
	a.CompletionScore = CompletionScore(a, documentCount)
	a.CurrentStep = CurrentStep(a, documentCount)
}
