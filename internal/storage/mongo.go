package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/models"
)

const eventsCollection = "events"

// MongoCatalog keeps event documents in MongoDB. It serves the same catalog
// operations as PostgresStore for deployments whose events live in a document store.
type MongoCatalog struct {
	client *mongo.Client
	events *mongo.Collection
}

type eventDocument struct {
	ID          string                   `bson:"_id"`
	Name        string                   `bson:"name"`
	StartDate   time.Time                `bson:"startDate"`
	EndDate     time.Time                `bson:"endDate"`
	ClientID    string                   `bson:"clientId"`
	Collections []models.CollectionGroup `bson:"eventCollections"`
	CreatedAt   time.Time                `bson:"createdAt"`
	UpdatedAt   time.Time                `bson:"updatedAt"`
}

func NewMongoCatalog(ctx context.Context, cfg config.MongoConfig) (*MongoCatalog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	c := &MongoCatalog{
		client: client,
		events: client.Database(cfg.Database).Collection(eventsCollection),
	}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return c, nil
}

func (c *MongoCatalog) ensureIndexes(ctx context.Context) error {
	_, err := c.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}

func (c *MongoCatalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *MongoCatalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *MongoCatalog) CreateEvent(ctx context.Context, ev *models.Event) error {
	if ev.Collections == nil {
		ev.Collections = []models.CollectionGroup{}
	}
	if err := models.ValidateCollectionGroups(ev.Collections); err != nil {
		return err
	}

	now := time.Now().UTC()
	ev.ID = uuid.New()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	_, err := c.events.InsertOne(ctx, toDocument(ev))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("event %q: %w", ev.Name, models.ErrDuplicate)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (c *MongoCatalog) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var doc eventDocument
	err := c.events.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return fromDocument(doc)
}

// ListEvents returns every event document, oldest first.
func (c *MongoCatalog) ListEvents(ctx context.Context) ([]models.Event, error) {
	cur, err := c.events.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	for cur.Next(ctx) {
		var doc eventDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode event: %w: %v", models.ErrMalformedEvent, err)
		}
		ev, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (c *MongoCatalog) AppendCollectionGroup(ctx context.Context, eventID uuid.UUID, group models.CollectionGroup) error {
	if err := models.ValidateCollectionGroups([]models.CollectionGroup{group}); err != nil {
		return err
	}

	res, err := c.events.UpdateByID(ctx, eventID.String(), bson.M{
		"$push": bson.M{"eventCollections": group},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("append collection group: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event %s: %w", eventID, models.ErrNotFound)
	}
	return nil
}

func toDocument(ev *models.Event) eventDocument {
	return eventDocument{
		ID:          ev.ID.String(),
		Name:        ev.Name,
		StartDate:   ev.StartDate,
		EndDate:     ev.EndDate,
		ClientID:    ev.ClientID.String(),
		Collections: ev.Collections,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

func fromDocument(doc eventDocument) (*models.Event, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: event id %q: %v", models.ErrMalformedEvent, doc.ID, err)
	}
	clientID, err := uuid.Parse(doc.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s client id %q: %v", models.ErrMalformedEvent, doc.ID, doc.ClientID, err)
	}
	if err := models.ValidateCollectionGroups(doc.Collections); err != nil {
		return nil, fmt.Errorf("event %s: %w", doc.ID, err)
	}

	collections := doc.Collections
	if collections == nil {
		collections = []models.CollectionGroup{}
	}
	return &models.Event{
		ID:          id,
		Name:        doc.Name,
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
		ClientID:    clientID,
		Collections: collections,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
