package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

const collectionParts = "parts"

// PartRepository implements ports.PartRepository using MongoDB.
type PartRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewPartRepository(db *mongo.Database) *PartRepository {
	return &PartRepository{col: db.Collection(collectionParts), seq: newSequence(db, collectionParts)}
}

// Ping reports whether the parts collection's server answers. Used by the readiness probe.
func (r *PartRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}

// Insert assigns the next part ID and stores the document.
func (r *PartRepository) Insert(ctx context.Context, p *domain.Part) (*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return nil, err
	}

	doc := *p
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert part: %w", err)
	}
	return &doc, nil
}

func (r *PartRepository) FindByID(ctx context.Context, id int64) (*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Part
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPartNotFound
		}
		return nil, fmt.Errorf("find part: %w", err)
	}
	return &p, nil
}

// UpdateFields $sets only the supplied fields, so disjoint concurrent updates compose.
func (r *PartRepository) UpdateFields(ctx context.Context, id int64, fields domain.PartFields) (*domain.Part, error) {
	set := partFieldsToSet(fields)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// ToggleActive flips the active flag with an update pipeline, so the read and
// the write happen inside the same server-side statement.
func (r *PartRepository) ToggleActive(ctx context.Context, id int64) (*domain.Part, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "active", Value: bson.D{{Key: "$not", Value: bson.A{"$active"}}}},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, pipeline)
}

// ListByActive returns parts with the given visibility ordered by ascending ID.
// Documents without an active field count as visible.
func (r *PartRepository) ListByActive(ctx context.Context, active bool) ([]*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"active": false}
	if active {
		filter = bson.M{"active": bson.M{"$ne": false}}
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}

	parts := make([]*domain.Part, 0)
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("decode parts: %w", err)
	}
	return parts, nil
}

// EnsureIndexes creates necessary indexes on the parts collection.
func (r *PartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "active", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

func (r *PartRepository) findOneAndUpdate(ctx context.Context, id int64, update interface{}) (*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Part
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPartNotFound
		}
		return nil, fmt.Errorf("update part %d: %w", id, err)
	}
	return &p, nil
}

func partFieldsToSet(f domain.PartFields) bson.M {
	set := bson.M{}
	if f.Name != nil {
		set["name"] = *f.Name
	}
	if f.Brand != nil {
		set["brand"] = *f.Brand
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.Price != nil {
		set["price"] = *f.Price
	}
	if f.ImageRef != nil {
		set["image_ref"] = *f.ImageRef
	}
	return set
}
