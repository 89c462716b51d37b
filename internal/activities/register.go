package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.SuggestPointsActivity)
	w.RegisterActivity(a.EvaluateTrialActivity)
	w.RegisterActivity(a.RecordTrialActivity)
	w.RegisterActivity(a.UpdateRunStatusActivity)
	w.RegisterActivity(a.WriteSearchResultActivity)
}
