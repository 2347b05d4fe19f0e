package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jaekwang-park/todolist/internal/model"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password,omitempty"`
	CognitoSub   string             `bson:"cognitoSub,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d userDocument) toModel() model.User {
	return model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CognitoSub:   d.CognitoSub,
		CreatedAt:    d.CreatedAt,
	}
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUser(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CognitoSub:   user.CognitoSub,
		CreatedAt:    mongoNow(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.User{}, mapMongoError(err, "failed to insert user")
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, userID string) (model.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return model.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}
	return r.findOne(ctx, bson.M{"email": pattern})
}

func (r *MongoUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	return r.findOne(ctx, bson.M{"cognitoSub": cognitoSub})
}

func (r *MongoUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email, name string) (model.User, error) {
	update := bson.M{
		"$set":         bson.M{"email": email},
		"$setOnInsert": bson.M{"name": name, "createdAt": mongoNow()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"cognitoSub": cognitoSub}, update, opts).Decode(&doc)
	if err != nil {
		return model.User{}, mapMongoError(err, "failed to upsert user")
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return model.User{}, mapMongoError(err, "failed to find user")
	}
	return doc.toModel(), nil
}

var _ UserRepository = (*MongoUserRepository)(nil)
