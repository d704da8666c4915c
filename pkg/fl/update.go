package fl

// Update is one participant's contribution to a round. NumSamples carries the
// size of the local dataset the update was trained on; aggregators that
// weight by sample count fall back to uniform weighting when any update in
// the round lacks one.
type Update struct {
	ParticipantID int   `json:"participant_id" cbor:"participant_id"`
	Theta         Theta `json:"theta" cbor:"theta"`
	NumSamples    int   `json:"num_samples" cbor:"num_samples"`
}

// Record is one evaluation of the global model against the validation set.
// Round 0 is the baseline evaluation of the untrained global model.
type Record struct {
	Round    int     `json:"round"`
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// History is the append-only sequence of round records produced by a run.
type History []Record
