// internal/app/store/content/contentstore.go
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	counterstore "github.com/dalemusser/ccbportal/internal/app/store/counters"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Store persists content records of every kind. Documents are keyed by an
// integer _id from the counters collection; the API sees it as "id".
type Store struct {
	db  *mongo.Database
	ids *counterstore.Store
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, ids: counterstore.New(db), now: time.Now}
}

func (s *Store) coll(k models.Kind) (*mongo.Collection, *models.Schema, error) {
	sc := models.SchemaFor(k)
	if sc == nil {
		return nil, nil, fmt.Errorf("unknown content kind %q", k)
	}
	return s.db.Collection(sc.Collection), sc, nil
}

// List returns every record of kind k in its schema sort order. With
// activeOnly, inactive records are left out.
func (s *Store) List(ctx context.Context, k models.Kind, activeOnly bool) ([]models.Record, error) {
	c, sc, err := s.coll(k)
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	cur, err := c.Find(ctx, filter, options.Find().SetSort(sc.Sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Record, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, toRecord(doc))
	}
	return out, cur.Err()
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, k models.Kind, id int64) (models.Record, error) {
	c, _, err := s.coll(k)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRecord(doc), nil
}

// Create inserts doc (already coerced by the schema) under a fresh id and
// returns the stored record.
func (s *Store) Create(ctx context.Context, k models.Kind, doc models.Record) (models.Record, error) {
	c, sc, err := s.coll(k)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.Next(ctx, sc.Collection)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	ins := bson.M{}
	for key, v := range doc {
		if key == "id" || key == "_id" {
			continue
		}
		ins[key] = v
	}
	ins["_id"] = id
	ins["created_at"] = now
	ins["updated_at"] = now

	if _, err := c.InsertOne(ctx, ins); err != nil {
		return nil, err
	}
	return toRecord(ins), nil
}

// Update applies set to the record and returns the updated record. An empty
// set only refreshes updated_at.
func (s *Store) Update(ctx context.Context, k models.Kind, id int64, set models.Record) (models.Record, error) {
	c, _, err := s.coll(k)
	if err != nil {
		return nil, err
	}
	upd := bson.M{}
	for key, v := range set {
		if key == "id" || key == "_id" || key == "created_at" {
			continue
		}
		upd[key] = v
	}
	upd["updated_at"] = s.now().UTC()

	var doc bson.M
	err = c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": upd},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRecord(doc), nil
}

// Delete removes the record. It returns ErrNotFound when nothing matched.
func (s *Store) Delete(ctx context.Context, k models.Kind, id int64) error {
	c, _, err := s.coll(k)
	if err != nil {
		return err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every record of kind k matching filter and returns
// how many were removed.
func (s *Store) DeleteWhere(ctx context.Context, k models.Kind, filter bson.M) (int64, error) {
	c, _, err := s.coll(k)
	if err != nil {
		return 0, err
	}
	res, err := c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DepartmentNames maps department id to name, for personnel listings.
func (s *Store) DepartmentNames(ctx context.Context) (map[int64]string, error) {
	c, _, err := s.coll(models.KindDepartments)
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[int64]string{}
	for cur.Next(ctx) {
		var d struct {
			ID   int64  `bson:"_id"`
			Name string `bson:"name"`
		}
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out[d.ID] = d.Name
	}
	return out, cur.Err()
}

// toRecord converts a stored document to its API shape: _id becomes id,
// timestamps become RFC 3339 strings and 32-bit ints widen to int64.
func toRecord(doc bson.M) models.Record {
	rec := make(models.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			k = "id"
		}
		switch x := v.(type) {
		case primitive.DateTime:
			rec[k] = x.Time().UTC().Format(time.RFC3339)
		case time.Time:
			rec[k] = x.UTC().Format(time.RFC3339)
		case int32:
			rec[k] = int64(x)
		default:
			rec[k] = v
		}
	}
	return rec
}
