package words

import "math/rand/v2"

// Shuffler reorders a slice in place.
type Shuffler func([]string)

// RandomShuffle is the default Shuffler.
func RandomShuffle(ws []string) {
	rand.Shuffle(len(ws), func(i, j int) { ws[i], ws[j] = ws[j], ws[i] })
}

// Queue is the pending-word queue of a round. The front is the next word to
// guess. An exhausted queue is refilled and reshuffled before the next draw,
// so Next always yields a word.
type Queue struct {
	pending []string
	shuffle Shuffler
	refills int
}

// NewQueue returns an empty queue; the first Next fills it.
// A nil shuffle means RandomShuffle.
func NewQueue(shuffle Shuffler) *Queue {
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	return &Queue{shuffle: shuffle}
}

// Reset discards the pending words and refills the queue from the list.
func (q *Queue) Reset() {
	q.pending = List()
	q.shuffle(q.pending)
	q.refills++
}

// Next pops the front word, refilling first if the queue is empty.
// Callers must have checked Init: with no list loaded it returns "".
func (q *Queue) Next() string {
	if len(q.pending) == 0 {
		q.Reset()
	}
	if len(q.pending) == 0 {
		return ""
	}
	w := q.pending[0]
	q.pending = q.pending[1:]
	return w
}

// Len is the number of words still pending.
func (q *Queue) Len() int { return len(q.pending) }

// Refills counts how many times the queue has been (re)filled.
func (q *Queue) Refills() int { return q.refills }
