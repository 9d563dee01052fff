package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// MongoRepository archives finished battles. Live coordination stays in
// Redis; only terminal records land here, for history and reconciliation.
type MongoRepository struct {
	battles *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, dbName string) *MongoRepository {
	return &MongoRepository{
		battles: client.Database(dbName).Collection("battles"),
	}
}

// ArchiveBattle inserts a terminal battle record. Upsert by battleId so a
// retried archive after a crash stays idempotent.
func (r *MongoRepository) ArchiveBattle(ctx context.Context, battle *model.Battle) error {
	if battle.Status != model.BattleFinished {
		return errors.New("only finished battles are archived")
	}
	filter := bson.M{"battleid": battle.BattleID}
	update := bson.M{"$set": battle}
	_, err := r.battles.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepository) GetArchivedBattle(ctx context.Context, battleID string) (*model.Battle, error) {
	var battle model.Battle
	err := r.battles.FindOne(ctx, bson.M{"battleid": battleID}).Decode(&battle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &battle, nil
}

// GetUserBattles returns a user's finished battles, newest first, paginated.
func (r *MongoRepository) GetUserBattles(ctx context.Context, userID string, page, pageSize int) ([]model.Battle, error) {
	if page < 1 || pageSize < 1 || userID == "" {
		return nil, errors.New("invalid pagination or userID")
	}

	filter := bson.M{
		"$or": []bson.M{
			{"player1.id": userID},
			{"player2.id": userID},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "finishedat", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.battles.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.Battle
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
