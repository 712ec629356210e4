// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/vaultindex/core"
	"github.com/poiesic/vaultindex/store"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultGRPCPort is the port the Qdrant gRPC API listens on.
const DefaultGRPCPort = 6334

// Client implements store.Store over the Qdrant gRPC API.
type Client struct {
	client *qdrant.Client
	logger *slog.Logger
	closed bool
}

var _ store.Store = (*Client)(nil)

// Config holds connection settings.
type Config struct {
	Host   string
	Port   int // gRPC port
	APIKey string
	UseTLS bool
}

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger.With("component", "qdrant-store")
		return nil
	}
}

// NewClient connects to a Qdrant server. The connection is lazy; use Ping to
// check reachability.
func NewClient(cfg Config, opts ...Option) (store.Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultGRPCPort
	}
	c := &Client{
		logger: slog.Default().With("component", "qdrant-store"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	c.client = client
	c.logger.Debug("qdrant client created", "host", cfg.Host, "port", cfg.Port)
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.closed {
		return store.ErrStoreClosed
	}
	reply, err := c.client.HealthCheck(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug("qdrant health check", "version", reply.GetVersion())
	return nil
}

func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	if c.closed {
		return false, store.ErrStoreClosed
	}
	return c.client.CollectionExists(ctx, name)
}

func (c *Client) CreateCollection(ctx context.Context, name string, cfg store.CollectionConfig) error {
	if c.closed {
		return store.ErrStoreClosed
	}
	if cfg.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", store.ErrInvalidQuery)
	}
	err := c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(cfg.Dimensions),
			Distance: toDistance(cfg.Distance),
		}),
	})
	if err != nil {
		return mapError(err)
	}
	c.logger.Info("collection created", "collection", name, "dimensions", cfg.Dimensions)
	return nil
}

func (c *Client) CollectionInfo(ctx context.Context, name string) (*store.CollectionConfig, error) {
	if c.closed {
		return nil, store.ErrStoreClosed
	}
	info, err := c.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, mapError(err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return nil, fmt.Errorf("%w: collection %s has no default vector", store.ErrInvalidQuery, name)
	}
	return &store.CollectionConfig{
		Dimensions: int(params.GetSize()),
		Distance:   fromDistance(params.GetDistance()),
	}, nil
}

func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	if c.closed {
		return store.ErrStoreClosed
	}
	err := mapError(c.client.DeleteCollection(ctx, name))
	if errors.Is(err, store.ErrCollectionNotFound) {
		return nil
	}
	return err
}

func (c *Client) Upsert(ctx context.Context, collection string, points []core.IndexPoint) error {
	if c.closed {
		return store.ErrStoreClosed
	}
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qdrant.PointStruct, len(points))
	for i := range points {
		payload, err := ToPayload(points[i].Payload)
		if err != nil {
			return fmt.Errorf("%w: point %s: %w", store.ErrSerializationFailed, points[i].ID, err)
		}
		structs[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(points[i].ID),
			Vectors: qdrant.NewVectorsDense(points[i].Vector),
			Payload: payload,
		}
	}
	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	return mapError(err)
}

func (c *Client) Delete(ctx context.Context, collection string, ids []string) error {
	if c.closed {
		return store.ErrStoreClosed
	}
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}
	_, err := c.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	return mapError(err)
}

func (c *Client) Scroll(ctx context.Context, collection string, req store.ScrollRequest) (*store.ScrollPage, error) {
	if c.closed {
		return nil, store.ErrStoreClosed
	}
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", store.ErrInvalidQuery)
	}
	request := &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         toFilter(req.Filter),
		Limit:          qdrant.PtrOf(uint32(req.Limit)),
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
		WithVectors:    qdrant.NewWithVectors(req.WithVectors),
	}
	if req.Offset != "" {
		request.Offset = qdrant.NewID(req.Offset)
	}
	results, next, err := c.client.ScrollAndOffset(ctx, request)
	if err != nil {
		return nil, mapError(err)
	}
	page := &store.ScrollPage{Points: make([]core.IndexPoint, 0, len(results))}
	for _, r := range results {
		point := core.IndexPoint{
			ID:      pointIDString(r.GetId()),
			Payload: FromPayload(r.GetPayload()),
		}
		if vec := r.GetVectors().GetVector(); vec != nil {
			if dense := vec.GetDense(); dense != nil {
				point.Vector = dense.GetData()
			} else {
				point.Vector = vec.GetData()
			}
		}
		page.Points = append(page.Points, point)
	}
	if next != nil {
		page.NextOffset = pointIDString(next)
	}
	return page, nil
}

func (c *Client) Count(ctx context.Context, collection string, filter *store.Filter) (uint64, error) {
	if c.closed {
		return 0, store.ErrStoreClosed
	}
	n, err := c.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter:         toFilter(filter),
		Exact:          qdrant.PtrOf(true),
	})
	return n, mapError(err)
}

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

func toDistance(d store.Distance) qdrant.Distance {
	if d == store.DistanceDot {
		return qdrant.Distance_Dot
	}
	return qdrant.Distance_Cosine
}

func fromDistance(d qdrant.Distance) store.Distance {
	if d == qdrant.Distance_Dot {
		return store.DistanceDot
	}
	return store.DistanceCosine
}

func toFilter(f *store.Filter) *qdrant.Filter {
	if f == nil || len(f.Must) == 0 {
		return nil
	}
	must := make([]*qdrant.Condition, len(f.Must))
	for i, m := range f.Must {
		must[i] = qdrant.NewMatch(m.Key, m.Value)
	}
	return &qdrant.Filter{Must: must}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprint(id.GetNum())
}

// mapError translates gRPC status codes into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.NotFound:
			return fmt.Errorf("%w: %s", store.ErrCollectionNotFound, s.Message())
		case codes.AlreadyExists:
			return fmt.Errorf("%w: %s", store.ErrCollectionExists, s.Message())
		case codes.InvalidArgument:
			if strings.Contains(strings.ToLower(s.Message()), "dimension") {
				return fmt.Errorf("%w: %s", core.ErrDimensionMismatch, s.Message())
			}
			return fmt.Errorf("%w: %s", store.ErrInvalidQuery, s.Message())
		}
	}
	return err
}
