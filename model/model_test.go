package model

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
)

func TestFuncModel(t *testing.T) {
	m := NewFuncModel("sum", func(f map[string]float64) (float64, error) {
		return f[core.FeatureUserID] + f[core.FeaturePlaceID], nil
	})
	resp, err := m.Predict(context.Background(), &core.MLPredictRequest{
		Features: []map[string]float64{{"user_id": 1, "place_id": 2}, {"user_id": 3, "place_id": 4}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Predictions) != 2 || resp.Predictions[1] != 7 {
		t.Errorf("predictions = %v", resp.Predictions)
	}

	var empty FuncModel
	if _, err := empty.Predict(context.Background(), &core.MLPredictRequest{}); !errors.Is(err, core.ErrModelUnavailable) {
		t.Errorf("nil fn err = %v", err)
	}
}

func TestRPCModelPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FeaturesList []map[string]float64 `json:"features_list"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scores := make([]float64, len(body.FeaturesList))
		for i, f := range body.FeaturesList {
			scores[i] = f["place_id"] / 10
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	}))
	defer srv.Close()

	m := NewRPCModel("ncf", srv.URL, time.Second)
	resp, err := m.Predict(context.Background(), &core.MLPredictRequest{
		Features: []map[string]float64{{"place_id": 5}, {"place_id": 8}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Predictions[0] != 0.5 || resp.Predictions[1] != 0.8 {
		t.Errorf("predictions = %v", resp.Predictions)
	}
	if err := m.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}

func TestRPCModelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/short" {
			_, _ = w.Write([]byte(`{"scores":[1]}`))
			return
		}
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	features := []map[string]float64{{"place_id": 1}, {"place_id": 2}}
	if _, err := NewRPCModel("a", srv.URL+"/short", time.Second).PredictBatch(context.Background(), features); err == nil {
		t.Error("count mismatch should fail")
	}
	if _, err := NewRPCModel("a", srv.URL+"/short", time.Second).PredictBatch(context.Background(), features); core.IsUnavailable(err) {
		t.Errorf("count mismatch is not an outage: %v", err)
	}
	if _, err := NewRPCModel("b", srv.URL, time.Second).PredictBatch(context.Background(), features); !core.IsUnavailable(err) {
		t.Errorf("500 err = %v, want UNAVAILABLE", err)
	}
	if _, err := NewRPCModel("c", "http://127.0.0.1:1", time.Second).PredictBatch(context.Background(), features); !core.IsUnavailable(err) {
		t.Errorf("connection refused err = %v, want UNAVAILABLE", err)
	}
}
