package storage

import (
	"testing"
	"time"

	"fddpipeline/pkg/entity"
	"fddpipeline/pkg/model"
)

func TestTopKSelect_OrdersBySimilarityDescending(t *testing.T) {
	scored := []entity.ScoredFranchisor{
		{Franchisor: &model.Franchisor{ID: "a", CreatedAt: time.Unix(1, 0)}, Similarity: 0.5},
		{Franchisor: &model.Franchisor{ID: "b", CreatedAt: time.Unix(2, 0)}, Similarity: 0.9},
		{Franchisor: &model.Franchisor{ID: "c", CreatedAt: time.Unix(3, 0)}, Similarity: 0.7},
	}
	topKSelect(scored, 2)
	if scored[0].Franchisor.ID != "b" || scored[1].Franchisor.ID != "c" {
		t.Fatalf("expected [b,c] ordering, got [%s,%s,%s]", scored[0].Franchisor.ID, scored[1].Franchisor.ID, scored[2].Franchisor.ID)
	}
}
