package books

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

//go:embed data/books.json
var datasetJSON []byte

var (
	datasetOnce sync.Once
	dataset     []Raw
	datasetErr  error
)

// Dataset returns the bundled read-only list of title/author pairs.
// The returned slice is a copy.
func Dataset() ([]Raw, error) {
	datasetOnce.Do(func() {
		dataset, datasetErr = ParseDataset(datasetJSON)
	})
	if datasetErr != nil {
		return nil, datasetErr
	}
	out := make([]Raw, len(dataset))
	copy(out, dataset)
	return out, nil
}

// ParseDataset decodes a JSON array of {title, author} objects.
// Entries missing either field are skipped.
func ParseDataset(data []byte) ([]Raw, error) {
	var raws []Raw
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	out := raws[:0]
	for _, r := range raws {
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out, nil
}

// Intn is the subset of *rand.Rand the picker needs.
type Intn interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Pick returns a uniformly chosen entry of raws. rng may be nil.
func Pick(raws []Raw, rng Intn) (Raw, error) {
	if len(raws) == 0 {
		return Raw{}, fmt.Errorf("dataset is empty")
	}
	if rng == nil {
		rng = globalRand{}
	}
	return raws[rng.Intn(len(raws))], nil
}

// Random builds a record from a uniformly chosen dataset entry, tagged SourceRandom.
func Random(rng Intn) (Book, error) {
	raws, err := Dataset()
	if err != nil {
		return Book{}, err
	}
	raw, err := Pick(raws, rng)
	if err != nil {
		return Book{}, err
	}
	return New(raw, SourceRandom), nil
}
