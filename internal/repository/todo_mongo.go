package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jaekwang-park/todolist/internal/model"
)

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        string             `bson:"user,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	Priority    string             `bson:"priority"`
	Category    string             `bson:"category"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDocument) toModel() model.Todo {
	return model.Todo{
		ID:          d.ID.Hex(),
		UserID:      d.User,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    model.Priority(d.Priority),
		Category:    d.Category,
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoTodoRepository struct {
	coll *mongo.Collection
}

func NewMongoTodo(db *mongo.Database) *MongoTodoRepository {
	return &MongoTodoRepository{coll: db.Collection(todosCollection)}
}

func (r *MongoTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	now := mongoNow()
	doc := todoDocument{
		ID:          primitive.NewObjectID(),
		User:        todo.UserID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		Priority:    string(todo.Priority),
		Category:    todo.Category,
		DueDate:     todo.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) GetByID(ctx context.Context, owner, todoID string) (model.Todo, error) {
	filter, ok := ownedByID(owner, todoID)
	if !ok {
		return model.Todo{}, ErrNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return model.Todo{}, mapMongoError(err, "failed to find todo")
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) Update(ctx context.Context, owner string, todo model.Todo) (model.Todo, error) {
	filter, ok := ownedByID(owner, todo.ID)
	if !ok {
		return model.Todo{}, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"title":       todo.Title,
		"description": todo.Description,
		"completed":   todo.Completed,
		"priority":    string(todo.Priority),
		"category":    todo.Category,
		"updatedAt":   mongoNow(),
	}}
	if todo.DueDate != nil {
		update["$set"].(bson.M)["dueDate"] = *todo.DueDate
	} else {
		update["$unset"] = bson.M{"dueDate": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return model.Todo{}, mapMongoError(err, "failed to update todo")
	}
	return doc.toModel(), nil
}

func (r *MongoTodoRepository) Delete(ctx context.Context, owner, todoID string) error {
	filter, ok := ownedByID(owner, todoID)
	if !ok {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTodoRepository) List(ctx context.Context, filter model.TodoFilter) ([]model.Todo, error) {
	query := bson.M{}
	if filter.Owner != "" {
		query["user"] = filter.Owner
	}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}
	if filter.Priority != nil {
		query["priority"] = string(*filter.Priority)
	}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}

	spec := filter.Sort
	if spec.IsZero() {
		spec = model.DefaultSort
	}
	direction := 1
	if spec.Desc {
		direction = -1
	}
	// Document field names match the sort tokens.
	opts := options.Find().SetSort(bson.D{
		{Key: spec.Field, Value: direction},
		{Key: "_id", Value: direction},
	})

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}

	todos := make([]model.Todo, len(docs))
	for i, d := range docs {
		todos[i] = d.toModel()
	}
	return todos, nil
}

// ownedByID builds the lookup filter for a todo. It reports false when the
// id is not an ObjectID, which can never match a stored todo.
func ownedByID(owner, todoID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(todoID)
	if err != nil {
		return nil, false
	}
	filter := bson.M{"_id": oid}
	if owner != "" {
		filter["user"] = owner
	}
	return filter, true
}

func mapMongoError(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", msg, err)
}

var _ TodoRepository = (*MongoTodoRepository)(nil)
