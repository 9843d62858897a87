package quote

// Stage is a step of the quote pipeline
type Stage string

const (
	StageReceived    Stage = "RECEIVED"
	StageFetching    Stage = "FETCHING"
	StageFetchFailed Stage = "FETCH_FAILED"
	StageFetched     Stage = "FETCHED"
	StageNormalizing Stage = "NORMALIZING"
	StageValidating  Stage = "VALIDATING"
	StageFiltering   Stage = "FILTERING"
	StageRanking     Stage = "RANKING"
	StageResponded   Stage = "RESPONDED"
)

// Terminal reports whether no transition leaves s
func (s Stage) Terminal() bool {
	return s == StageFetchFailed || s == StageResponded
}

var transitions = map[Stage][]Stage{
	StageReceived:    {StageFetching, StageFetchFailed},
	StageFetching:    {StageFetchFailed, StageFetched},
	StageFetched:     {StageNormalizing},
	StageNormalizing: {StageValidating},
	StageValidating:  {StageFiltering},
	StageFiltering:   {StageRanking},
	StageRanking:     {StageResponded},
}

// CanTransition reports whether the pipeline may move from s to next
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
