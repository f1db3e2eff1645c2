package runstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists suspended run state in a MongoDB collection,
// keyed by (agent, run_id).
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (ms *MongoStore) Save(ctx context.Context, state RunState) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	state.UpdatedAt = time.Now().UTC()
	filter := bson.M{"agent": state.Agent, "run_id": state.RunID}
	update := bson.M{"$set": runStateDoc(state)}
	_, err := ms.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (ms *MongoStore) Load(ctx context.Context, agent string, runID int64) (RunState, error) {
	if ms == nil || ms.collection == nil {
		return RunState{}, ErrNotFound
	}
	var doc struct {
		Agent         string    `bson:"agent"`
		RunID         int64     `bson:"run_id"`
		Prompt        string    `bson:"prompt"`
		Steps         []bson.M  `bson:"steps"`
		Iteration     int       `bson:"iteration"`
		MaxIterations int       `bson:"max_iterations"`
		PendingTool   string    `bson:"pending_tool"`
		PendingRunID  int64     `bson:"pending_run_id"`
		Reasoning     string    `bson:"reasoning"`
		UpdatedAt     time.Time `bson:"updated_at"`
	}
	err := ms.collection.FindOne(ctx, bson.M{"agent": agent, "run_id": runID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RunState{}, ErrNotFound
	}
	if err != nil {
		return RunState{}, err
	}
	state := RunState{
		Agent:         doc.Agent,
		RunID:         doc.RunID,
		Prompt:        doc.Prompt,
		Iteration:     doc.Iteration,
		MaxIterations: doc.MaxIterations,
		PendingTool:   doc.PendingTool,
		PendingRunID:  doc.PendingRunID,
		Reasoning:     doc.Reasoning,
		UpdatedAt:     doc.UpdatedAt,
	}
	for _, raw := range doc.Steps {
		step := Step{}
		if v, ok := raw["reasoning"].(string); ok {
			step.Reasoning = v
		}
		if v, ok := raw["observation"].(string); ok {
			step.Observation = v
		}
		state.Steps = append(state.Steps, step)
	}
	return state, nil
}

func (ms *MongoStore) Delete(ctx context.Context, agent string, runID int64) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	_, err := ms.collection.DeleteOne(ctx, bson.M{"agent": agent, "run_id": runID})
	return err
}

// Close disconnects the underlying client.
func (ms *MongoStore) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ms.client.Disconnect(closeCtx)
}

func runStateDoc(state RunState) bson.M {
	steps := make([]bson.M, 0, len(state.Steps))
	for _, step := range state.Steps {
		steps = append(steps, bson.M{
			"reasoning":   step.Reasoning,
			"observation": step.Observation,
		})
	}
	return bson.M{
		"agent":          state.Agent,
		"run_id":         state.RunID,
		"prompt":         state.Prompt,
		"steps":          steps,
		"iteration":      state.Iteration,
		"max_iterations": state.MaxIterations,
		"pending_tool":   state.PendingTool,
		"pending_run_id": state.PendingRunID,
		"reasoning":      state.Reasoning,
		"updated_at":     state.UpdatedAt,
	}
}

var _ Store = (*MongoStore)(nil)
