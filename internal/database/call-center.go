package repository

import (
	"CallService/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CallCenterByPhone resolves the call center record bound to the bot's
// own line.
func (m *MongoDB) CallCenterByPhone(ctx context.Context, phoneNumber string) (*entity.CallCenter, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(callCentersCollection)
	filter := bson.D{{Key: "phone_number", Value: phoneNumber}}

	var callCenter entity.CallCenter
	err = collection.FindOne(ctx, filter).Decode(&callCenter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &callCenter, nil
}

// TouchCallCenter stamps the logged_at field on (re)connection.
func (m *MongoDB) TouchCallCenter(ctx context.Context, callCenterID, loggedAt int64) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(callCentersCollection)
	filter := bson.D{{Key: "call_center_id", Value: callCenterID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "logged_at", Value: loggedAt}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}

// CreateCallCenter persists a new call center and assigns its id.
func (m *MongoDB) CreateCallCenter(ctx context.Context, callCenter *entity.CallCenter) (*entity.CallCenter, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	callCenter.CallCenterID, err = m.nextSequence(ctx, connection, "call_center")
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(callCentersCollection)
	if _, err = collection.InsertOne(ctx, callCenter); err != nil {
		return nil, err
	}
	return callCenter, nil
}
