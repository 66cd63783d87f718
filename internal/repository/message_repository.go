package repository

import (
	"context"
	"sort"
	"time"

	"talkwire/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository is the query contract the integrity caches and sessions
// run on. Messages are soft-deleted per side and never removed.
type MessageRepository interface {
	// Create appends a message. Time is server-assigned.
	Create(ctx context.Context, message entity.Message) (entity.Message, error)

	// UnreadPartners returns the senders with at least one unread message to
	// userId that userId has not deleted.
	UnreadPartners(ctx context.Context, userId int64) (map[int64]struct{}, error)

	// DialogMessages returns both directions of one conversation, each
	// filtered by the owner's own delete flag, ordered by time ascending.
	DialogMessages(ctx context.Context, ownerId, partnerId int64) ([]entity.Message, error)

	// LatestPerPartner returns the most recent visible message per partner,
	// from either direction.
	LatestPerPartner(ctx context.Context, userId int64) (map[int64]entity.LatestMessage, error)

	// MarkRead flips the unread flag on partner->owner messages.
	MarkRead(ctx context.Context, ownerId, partnerId int64) error

	// MarkDeleted soft-deletes the owner's view of both directions. The
	// partner's view is untouched.
	MarkDeleted(ctx context.Context, ownerId, partnerId int64) error

	// UsersWithUnreadSince reports per-user unread counts within the window,
	// for the external notification job.
	UsersWithUnreadSince(ctx context.Context, since time.Time) ([]entity.UnreadDigest, error)
}

type messageRepository struct {
	db mongo.Database
}

func NewMessageRepository(db mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, message entity.Message) (entity.Message, error) {
	collection := r.db.Collection("messages")

	message.Id = uuid.New().String()
	// Second resolution is all the digest and the client format observe.
	message.Time = time.Now().UTC().Truncate(time.Second)
	message.IsUnread = true
	message.IsDeletedBySender = false
	message.IsDeletedByReceiver = false

	_, err := collection.InsertOne(ctx, message)
	if err != nil {
		return entity.Message{}, err
	}

	return message, nil
}

func (r *messageRepository) UnreadPartners(ctx context.Context, userId int64) (map[int64]struct{}, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"receiverId":          userId,
		"isUnread":            true,
		"isDeletedByReceiver": false,
	}

	senders, err := collection.Distinct(ctx, "senderId", filter)
	if err != nil {
		return nil, err
	}

	partners := make(map[int64]struct{}, len(senders))
	for _, sender := range senders {
		switch id := sender.(type) {
		case int64:
			partners[id] = struct{}{}
		case int32:
			partners[int64(id)] = struct{}{}
		}
	}
	return partners, nil
}

func (r *messageRepository) DialogMessages(ctx context.Context, ownerId, partnerId int64) ([]entity.Message, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"$or": bson.A{
			bson.M{
				"senderId":          ownerId,
				"receiverId":        partnerId,
				"isDeletedBySender": false,
			},
			bson.M{
				"senderId":            partnerId,
				"receiverId":          ownerId,
				"isDeletedByReceiver": false,
			},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var messages []entity.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) LatestPerPartner(ctx context.Context, userId int64) (map[int64]entity.LatestMessage, error) {
	collection := r.db.Collection("messages")
	latest := make(map[int64]entity.LatestMessage)

	fold := func(filter bson.M, partnerField string) error {
		opts := options.Find().SetProjection(bson.M{
			partnerField: 1,
			"time":       1,
			"text":       1,
		})
		cursor, err := collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}

		var rows []entity.Message
		if err := cursor.All(ctx, &rows); err != nil {
			return err
		}
		for _, row := range rows {
			partnerId := row.SenderId
			if partnerField == "receiverId" {
				partnerId = row.ReceiverId
			}
			if current, ok := latest[partnerId]; !ok || row.Time.After(current.Time) {
				latest[partnerId] = entity.LatestMessage{
					Time: row.Time,
					Text: row.Text,
				}
			}
		}
		return nil
	}

	outgoing := bson.M{"senderId": userId, "isDeletedBySender": false}
	if err := fold(outgoing, "receiverId"); err != nil {
		return nil, err
	}
	incoming := bson.M{"receiverId": userId, "isDeletedByReceiver": false}
	if err := fold(incoming, "senderId"); err != nil {
		return nil, err
	}

	return latest, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, ownerId, partnerId int64) error {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"senderId":            partnerId,
		"receiverId":          ownerId,
		"isUnread":            true,
		"isDeletedByReceiver": false,
	}
	update := bson.M{"$set": bson.M{"isUnread": false}}

	_, err := collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *messageRepository) MarkDeleted(ctx context.Context, ownerId, partnerId int64) error {
	collection := r.db.Collection("messages")

	sentFilter := bson.M{
		"senderId":          ownerId,
		"receiverId":        partnerId,
		"isDeletedBySender": false,
	}
	if _, err := collection.UpdateMany(ctx, sentFilter, bson.M{
		"$set": bson.M{"isDeletedBySender": true},
	}); err != nil {
		return err
	}

	receivedFilter := bson.M{
		"senderId":            partnerId,
		"receiverId":          ownerId,
		"isDeletedByReceiver": false,
	}
	_, err := collection.UpdateMany(ctx, receivedFilter, bson.M{
		"$set": bson.M{"isDeletedByReceiver": true},
	})
	return err
}

func (r *messageRepository) UsersWithUnreadSince(ctx context.Context, since time.Time) ([]entity.UnreadDigest, error) {
	collection := r.db.Collection("messages")

	matchStage := bson.D{{Key: "$match", Value: bson.D{
		{Key: "isDeletedByReceiver", Value: false},
		{Key: "isUnread", Value: true},
		{Key: "time", Value: bson.D{{Key: "$gte", Value: since}}},
	}}}
	groupStage := bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$receiverId"},
		{Key: "number", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}

	cursor, err := collection.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage})
	if err != nil {
		return nil, err
	}

	var digests []entity.UnreadDigest
	if err := cursor.All(ctx, &digests); err != nil {
		return nil, err
	}

	sort.Slice(digests, func(i, j int) bool {
		return digests[i].UserId < digests[j].UserId
	})
	return digests, nil
}
