// Package fingerprint computes a stable identity for a submission and
// guards intake against duplicate work. Two requests are treated as the
// same submission when they carry the same language, question type,
// function and class name, source code, and test case inputs.
//
// The guard is a bloom filter, following the same membership-test pattern
// the platform already uses for announcement tag matching: a positive is
// "probably seen before, go look it up"; a negative is a hard guarantee
// of novelty. This keeps the intake path O(1) and allocation-free in the
// common case instead of round-tripping to the status store for every
// arrival just to check for a duplicate.
package fingerprint

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"lukechampine.com/blake3"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// Of returns the hex-encoded BLAKE3 digest identifying req's content:
// language, the question type, function name and class name from its
// metadata, source code, and test case inputs. It does
// not depend on req.ID, so resubmitting identical work under a new id
// still fingerprints identically.
func Of(req *model.SubmissionRequest) string {
	h := blake3.New(32, nil)

	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0}) // field separator, avoids "ab"+"c" == "a"+"bc" collisions
	}

	write(string(req.Language))
	write(string(req.Metadata.QuestionType))
	write(req.Metadata.FunctionName)
	write(req.Metadata.ClassName)
	write(req.SourceCode)
	for _, tc := range req.AllTestCases() {
		if tc.Values != nil {
			if b, err := json.Marshal(tc.Values); err == nil {
				write(string(b))
			}
		}
		if tc.Ops != nil {
			if b, err := json.Marshal(tc.Ops); err == nil {
				write(string(b))
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Guard is a concurrency-safe, capacity-bounded duplicate detector.
// A Guard is sized for an expected number of distinct submissions and a
// target false-positive rate; once full, Seen may return more false
// positives than the configured rate, which only costs an extra status
// lookup downstream, never a correctness problem.
type Guard struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewGuard creates a Guard sized to hold expectedItems fingerprints at
// the given false-positive rate (e.g. 0.01 for 1%).
func NewGuard(expectedItems uint, falsePositiveRate float64) *Guard {
	return &Guard{filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate)}
}

// Seen reports whether fp has (probably) already been recorded, and
// records it for future calls regardless of the result. Callers that get
// a true should still confirm with the status store, since the filter
// never removes entries and can return false positives.
func (g *Guard) Seen(fp string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := []byte(fp)
	wasSet := g.filter.TestAndAdd(key)
	return wasSet
}
