package vectorstore

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// callShape identifies which Points RPC the connected Qdrant supports.
// Newer servers expose the universal Query RPC; older ones only the legacy
// Search RPC. The shape is negotiated on the first call and memoized so the
// probe does not repeat per request.
type callShape int

const (
	shapeUnknown callShape = iota
	shapeQuery
	shapeSearch
)

// payloadPathKey is the payload field carrying the corpus-relative file path.
const payloadPathKey = "path"

// unknownPath is reported when a point has no path payload.
const unknownPath = "Unknown"

// QdrantStore implements Store using the Qdrant gRPC API.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string

	// No locking: the server processes one request at a time.
	shape callShape
}

// NewQdrant connects to a Qdrant gRPC endpoint at addr (host:port).
func NewQdrant(addr, collection string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantStore{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
		shape:      shapeUnknown,
	}, nil
}

// Query returns up to limit candidates ordered by descending score.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, limit int) ([]Candidate, error) {
	switch s.shape {
	case shapeQuery:
		return s.queryPoints(ctx, vector, limit)
	case shapeSearch:
		return s.searchPoints(ctx, vector, limit)
	}

	// First call: negotiate the supported RPC, then stick with it.
	results, err := s.queryPoints(ctx, vector, limit)
	if err == nil {
		s.shape = shapeQuery
		return results, nil
	}
	if status.Code(err) != codes.Unimplemented {
		return nil, err
	}

	results, err = s.searchPoints(ctx, vector, limit)
	if err != nil {
		return nil, err
	}
	s.shape = shapeSearch
	return results, nil
}

func (s *QdrantStore) queryPoints(ctx context.Context, vector []float32, limit int) ([]Candidate, error) {
	lim := uint64(limit)
	resp, err := s.points.Query(ctx, &pb.QueryPoints{
		CollectionName: s.collection,
		Query: &pb.Query{
			Variant: &pb.Query_Nearest{
				Nearest: &pb.VectorInput{
					Variant: &pb.VectorInput_Dense{Dense: &pb.DenseVector{Data: vector}},
				},
			},
		},
		Limit:       &lim,
		WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	return toCandidates(resp.Result), nil
}

func (s *QdrantStore) searchPoints(ctx context.Context, vector []float32, limit int) ([]Candidate, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	return toCandidates(resp.Result), nil
}

func toCandidates(points []*pb.ScoredPoint) []Candidate {
	results := make([]Candidate, len(points))
	for i, pt := range points {
		path := pt.Payload[payloadPathKey].GetStringValue()
		if path == "" {
			path = unknownPath
		}
		results[i] = Candidate{
			Path:  path,
			Score: pt.Score,
		}
	}
	return results
}

// Close tears down the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

var _ Store = (*QdrantStore)(nil)
