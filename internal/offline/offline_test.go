package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"authorid/internal/config"
	"authorid/internal/corpus"
	"authorid/internal/pipeline"
)

type failTransport struct{}

func (f failTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled for offline test")
}

// The whole pipeline is an offline batch job; nothing may reach for the
// network.
func TestOfflineMode(t *testing.T) {
	original := http.DefaultTransport
	http.DefaultTransport = failTransport{}
	t.Cleanup(func() { http.DefaultTransport = original })

	var recs []corpus.Record
	for i := 0; i < 4; i++ {
		author := fmt.Sprintf("author-%d", i)
		marker := fmt.Sprintf("marker%d", i)
		for j := 0; j < 3; j++ {
			recs = append(recs, corpus.Record{
				UserID: author,
				Text:   strings.Repeat(marker+" tells the story again. ", 4),
			})
		}
	}

	cfg := config.Default()
	cfg.Attribution.TopKAuthors = 4
	cfg.Attribution.RecordsPerAuthorCap = 5
	cfg.Vectorizer.MinDF = 1
	cfg.Classifier.Epochs = 20

	res, err := pipeline.Attribution(context.Background(), cfg, recs, "", nil)
	if err != nil {
		t.Fatalf("expected attribution to work offline: %v", err)
	}
	if res.Dims == 0 {
		t.Fatal("expected a fitted feature space offline")
	}
}
