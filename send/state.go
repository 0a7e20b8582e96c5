package send

// State is a stage of one send. A send moves strictly forward through
// the stages and ends in Succeeded or Failed; there is no resume.
type State int

const (
	Idle State = iota
	FetchingUTXOs
	SelectingInputs
	Building
	Signing
	Broadcasting
	Succeeded
	Failed
)

var stateNames = [...]string{
	Idle:            "idle",
	FetchingUTXOs:   "fetching_utxos",
	SelectingInputs: "selecting_inputs",
	Building:        "building",
	Signing:         "signing",
	Broadcasting:    "broadcasting",
	Succeeded:       "succeeded",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a send.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}
