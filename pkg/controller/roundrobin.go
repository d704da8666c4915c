package controller

type roundRobin struct {
	numParticipants int
	next            int
}

// NewRoundRobin cycles through participants one at a time:
// 0, 1, ..., n-1, 0, ... It only supports single-participant rounds; the
// count argument is ignored beyond validation.
func NewRoundRobin(numParticipants int) Controller {
	return &roundRobin{
		numParticipants: numParticipants,
	}
}

func (r *roundRobin) Indices(count int) ([]int, error) {
	if err := validateCount(count, r.numParticipants); err != nil {
		return nil, err
	}

	idx := r.next
	r.next = (r.next + 1) % r.numParticipants

	return []int{idx}, nil
}
