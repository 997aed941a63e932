package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// --- Mocks ---

type mockPoints struct {
	upsertErr error
	last      *pb.UpsertPoints
	calls     int
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.calls++
	m.last = in
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	return &pb.PointsOperationResponse{}, nil
}

type mockCollections struct {
	listResp  *pb.ListCollectionsResponse
	listErr   error
	createErr error
	deleteErr error
	created   *pb.CreateCollection
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.listResp, m.listErr
}
func (m *mockCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = in
	return &pb.CollectionOperationResponse{Result: m.createErr == nil}, m.createErr
}
func (m *mockCollections) Delete(_ context.Context, _ *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return &pb.CollectionOperationResponse{Result: m.deleteErr == nil}, m.deleteErr
}

// --- Tests ---

func TestNewWithClients(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "jobs")
	if vs == nil {
		t.Fatal("expected non-nil")
	}
	if err := vs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	cols := &mockCollections{
		listResp: &pb.ListCollectionsResponse{
			Collections: []*pb.CollectionDescription{{Name: "jobs"}},
		},
	}
	vs := NewWithClients(&mockPoints{}, cols, "jobs")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created != nil {
		t.Fatal("existing collection should not be recreated")
	}
}

func TestEnsureCollection_Creates(t *testing.T) {
	cols := &mockCollections{listResp: &pb.ListCollectionsResponse{}}
	vs := NewWithClients(&mockPoints{}, cols, "jobs")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.created == nil {
		t.Fatal("expected Create call")
	}
	params := cols.created.GetVectorsConfig().GetParams()
	if params.GetSize() != 384 || params.GetDistance() != pb.Distance_Cosine {
		t.Fatalf("params = %v", params)
	}
}

func TestEnsureCollection_ListError(t *testing.T) {
	cols := &mockCollections{listErr: errors.New("unavailable")}
	vs := NewWithClients(&mockPoints{}, cols, "jobs")
	if err := vs.EnsureCollection(context.Background(), 384); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureCollection_CreateError(t *testing.T) {
	cols := &mockCollections{listResp: &pb.ListCollectionsResponse{}, createErr: errors.New("boom")}
	vs := NewWithClients(&mockPoints{}, cols, "jobs")
	if err := vs.EnsureCollection(context.Background(), 384); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteCollection(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{deleteErr: errors.New("nope")}, "jobs")
	if err := vs.DeleteCollection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsert_Empty(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "jobs")
	if err := vs.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pts.calls != 0 {
		t.Fatal("empty upsert should not reach qdrant")
	}
}

func TestUpsert_BuildsPoints(t *testing.T) {
	pts := &mockPoints{}
	vs := NewWithClients(pts, &mockCollections{}, "jobs")
	id := PointID("job", "mock-001")
	rec := VectorRecord{
		ID:        id,
		Key:       "mock-001",
		Embedding: []float32{0.1, 0.2},
		Payload:   map[string]any{"title": "Junior AI Engineer", "n": 3, "ok": true, "score": 0.5},
	}
	if err := vs.Upsert(context.Background(), []VectorRecord{rec}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if pts.last.GetCollectionName() != "jobs" || !pts.last.GetWait() {
		t.Fatalf("request = %v", pts.last)
	}
	p := pts.last.GetPoints()[0]
	if p.GetId().GetUuid() != id {
		t.Errorf("id = %s, want %s", p.GetId().GetUuid(), id)
	}
	if got := p.GetVectors().GetVector().GetData(); len(got) != 2 {
		t.Errorf("vector = %v", got)
	}
	pl := p.GetPayload()
	if pl["title"].GetStringValue() != "Junior AI Engineer" {
		t.Errorf("title = %v", pl["title"])
	}
	if pl["n"].GetIntegerValue() != 3 || !pl["ok"].GetBoolValue() || pl["score"].GetDoubleValue() != 0.5 {
		t.Errorf("payload = %v", pl)
	}
}

func TestUpsert_Error(t *testing.T) {
	vs := NewWithClients(&mockPoints{upsertErr: errors.New("timeout")}, &mockCollections{}, "jobs")
	err := vs.Upsert(context.Background(), []VectorRecord{{ID: PointID("job", "x"), Embedding: []float32{1}}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := PointID("job", "mock-001")
	if a != PointID("job", "mock-001") {
		t.Fatal("point id not stable")
	}
	if a == PointID("resume", "mock-001") {
		t.Fatal("kind must be part of the point id")
	}
	if a == PointID("job", "mock-002") {
		t.Fatal("distinct keys share a point id")
	}
}

func TestOpen_Schemes(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "memory://", "jobs")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("memory:// opened %T", s)
	}
	if _, err := Open(ctx, "redis://localhost:6379", "jobs"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}
