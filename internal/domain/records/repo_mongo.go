package records

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names in the document store. The two baby collections are the
// primary and backup upload paths; the three flat collections belong to the
// current record generation.
const (
	CollBabies       = "babies"
	CollBabiesBackup = "lrBabies"
	CollAgeDays      = "ageDays"
	CollSessions     = "kmcSessions"
	CollObservations = "observations"
	CollDischarges   = "discharges"
	CollFollowUps    = "followUps"
)

// MongoRepo is the document-store implementation of Repository.
type MongoRepo struct {
	db *mongo.Database
}

// NewMongoRepo creates a repository over the given database.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{db: db}
}

// LoadBundle fetches every collection and applies the query scope. Hospital
// and UID restrictions are pushed to the store; the birth-date window is
// applied after parsing, because stored timestamps mix second and
// millisecond epochs and server-side range filters would misclassify them.
func (r *MongoRepo) LoadBundle(ctx context.Context, q Query) (*Bundle, error) {
	filter := bson.M{}
	if len(q.Hospitals) > 0 {
		filter["hospitalName"] = bson.M{"$in": q.Hospitals}
	}
	if len(q.UIDs) > 0 {
		filter["UID"] = bson.M{"$in": q.UIDs}
	}

	b := &Bundle{}

	primaryDocs, err := r.findAll(ctx, CollBabies, filter)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollBabies, err)
	}
	for _, d := range primaryDocs {
		b.Primary = append(b.Primary, ParseBaby(d, SourcePrimary))
	}

	backupDocs, err := r.findAll(ctx, CollBabiesBackup, filter)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollBabiesBackup, err)
	}
	for _, d := range backupDocs {
		b.Backup = append(b.Backup, ParseBaby(d, SourceBackup))
	}

	b.Primary = filterBirthWindow(b.Primary, q.From, q.To)
	b.Backup = filterBirthWindow(b.Backup, q.From, q.To)

	dayDocs, err := r.findAll(ctx, CollAgeDays, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollAgeDays, err)
	}
	for _, d := range dayDocs {
		b.Days = append(b.Days, ParseDayAggregate(d))
	}

	sessionDocs, err := r.findAll(ctx, CollSessions, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollSessions, err)
	}
	for _, d := range sessionDocs {
		b.Sessions = append(b.Sessions, ParseSession(d))
	}

	obsDocs, err := r.findAll(ctx, CollObservations, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollObservations, err)
	}
	for _, d := range obsDocs {
		b.Observations = append(b.Observations, ParseObservation(d))
	}

	dischargeDocs, err := r.findAll(ctx, CollDischarges, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollDischarges, err)
	}
	for _, d := range dischargeDocs {
		b.Discharges = append(b.Discharges, ParseDischarge(d))
	}

	followUpDocs, err := r.findAll(ctx, CollFollowUps, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", CollFollowUps, err)
	}
	for _, d := range followUpDocs {
		b.FollowUps = append(b.FollowUps, ParseFollowUp(d))
	}

	return b, nil
}

// CollectionCounts returns per-collection document counts, for the health
// and inventory endpoints.
func (r *MongoRepo) CollectionCounts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, name := range []string{
		CollBabies, CollBabiesBackup, CollAgeDays, CollSessions,
		CollObservations, CollDischarges, CollFollowUps,
	} {
		n, err := r.db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

func (r *MongoRepo) findAll(ctx context.Context, coll string, filter bson.M) ([]Doc, error) {
	cur, err := r.db.Collection(coll).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]Doc, 0, len(raw))
	for _, m := range raw {
		out = append(out, Doc(demongo(m).(map[string]any)))
	}
	return out, nil
}

// demongo rewrites driver-specific container and scalar types into the
// plain dynamic types the parsers expect.
func demongo(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = demongo(vv)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = demongo(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = demongo(vv)
		}
		return a
	case primitive.DateTime:
		return t.Time()
	case primitive.Decimal128:
		return t.String()
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}

func filterBirthWindow(babies []Baby, from, to *time.Time) []Baby {
	if from == nil && to == nil {
		return babies
	}
	out := babies[:0:0]
	for _, b := range babies {
		if b.BirthDate == nil {
			continue
		}
		if from != nil && b.BirthDate.Before(*from) {
			continue
		}
		if to != nil && b.BirthDate.After(*to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
