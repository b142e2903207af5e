// Package registry holds the loaded group models. A Registry is built once
// at startup and is read-only afterwards, so it is safe for concurrent use.
package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eduymaz/aller-mind/internal/inference/artifact"
	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/model"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

// Failure records why a group's model could not be loaded.
type Failure struct {
	GroupID  int    `json:"group_id"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

type Registry struct {
	models   map[int]*model.Model
	failures []Failure
}

// New builds a registry from already decoded models.
func New(models ...*model.Model) (*Registry, error) {
	r := &Registry{models: make(map[int]*model.Model, len(models))}
	for _, m := range models {
		if m == nil {
			return nil, fmt.Errorf("nil model")
		}
		id := m.Meta.GroupID
		if !groups.Valid(id) {
			return nil, fmt.Errorf("group id %d outside 1..%d", id, groups.Count)
		}
		if _, exists := r.models[id]; exists {
			return nil, fmt.Errorf("duplicate model for group %d", id)
		}
		r.models[id] = m
	}
	return r, nil
}

// Load reads every group's bundle from src in parallel. A group that fails
// to load is logged and recorded in Failures; it never stops the others.
// The only error returned is ctx's.
func Load(ctx context.Context, src artifact.Source, log *logger.Logger) (*Registry, error) {
	log = log.With("service", "ModelRegistry")
	ids := groups.IDs()
	loaded := make([]*model.Model, len(ids))
	failed := make([]*Failure, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			start := time.Now()
			m, err := loadOne(ctx, src, id)
			if err != nil {
				log.Warn("group model unavailable", "group_id", id, "location", src.Location(id), "error", err)
				failed[i] = &Failure{GroupID: id, Location: src.Location(id), Reason: err.Error(), Err: err}
				return nil
			}
			log.Info("group model loaded",
				"group_id", id,
				"algorithm", m.Meta.Algorithm,
				"features", len(m.Meta.Features),
				"test_r2", m.Meta.Performance.TestR2,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			loaded[i] = m
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Registry{models: make(map[int]*model.Model, len(ids))}
	for i := range ids {
		if loaded[i] != nil {
			r.models[loaded[i].Meta.GroupID] = loaded[i]
		}
		if failed[i] != nil {
			r.failures = append(r.failures, *failed[i])
		}
	}
	log.Info("model registry ready", "available", r.Available(), "failed", len(r.failures))
	return r, nil
}

func loadOne(ctx context.Context, src artifact.Source, id int) (*model.Model, error) {
	rc, err := src.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	m, err := model.Decode(rc)
	if err != nil {
		return nil, err
	}
	if m.Meta.GroupID != id {
		return nil, fmt.Errorf("%w: %s declares group %d", model.ErrInvalidBundle, src.Location(id), m.Meta.GroupID)
	}
	return m, nil
}

func (r *Registry) Get(groupID int) (*model.Model, bool) {
	m, ok := r.models[groupID]
	return m, ok
}

// Available lists loaded group ids in ascending order.
func (r *Registry) Available() []int {
	out := make([]int, 0, len(r.models))
	for id := range r.models {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (r *Registry) Len() int { return len(r.models) }

func (r *Registry) Failures() []Failure {
	return append([]Failure(nil), r.failures...)
}

// ModelInfo is the public description of a loaded model.
type ModelInfo struct {
	GroupID         int               `json:"group_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Algorithm       string            `json:"algorithm"`
	Estimator       string            `json:"estimator"`
	Version         string            `json:"version,omitempty"`
	FeatureCount    int               `json:"feature_count"`
	Features        []string          `json:"features"`
	RequiresScaling bool              `json:"requires_scaling"`
	Performance     model.Performance `json:"performance"`
	Target          model.Target      `json:"target"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Info describes every loaded model, ordered by group id.
func (r *Registry) Info() []ModelInfo {
	ids := r.Available()
	out := make([]ModelInfo, 0, len(ids))
	for _, id := range ids {
		m := r.models[id]
		out = append(out, ModelInfo{
			GroupID:         id,
			Name:            m.Meta.Name,
			Description:     m.Meta.Description,
			Algorithm:       m.Meta.Algorithm,
			Estimator:       m.Estimator.Kind(),
			Version:         m.Meta.Version,
			FeatureCount:    len(m.Meta.Features),
			Features:        append([]string(nil), m.Meta.Features...),
			RequiresScaling: m.Estimator.RequiresScaling(),
			Performance:     m.Meta.Performance,
			Target:          m.Meta.Target,
			CreatedAt:       m.Meta.CreatedAt,
		})
	}
	return out
}
