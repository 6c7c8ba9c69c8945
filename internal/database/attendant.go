package repository

import (
	"CallService/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AttendantByWuid retrieves one attendant by chat identifier.
func (m *MongoDB) AttendantByWuid(ctx context.Context, wuid string) (*entity.Attendant, error) {
	return m.findAttendant(ctx, bson.D{{Key: "wuid", Value: wuid}})
}

// AttendantByID retrieves one attendant by numeric id.
func (m *MongoDB) AttendantByID(ctx context.Context, attendantID int64) (*entity.Attendant, error) {
	return m.findAttendant(ctx, bson.D{{Key: "attendant_id", Value: attendantID}})
}

func (m *MongoDB) findAttendant(ctx context.Context, filter bson.D) (*entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)

	var attendant entity.Attendant
	err = collection.FindOne(ctx, filter).Decode(&attendant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &attendant, nil
}

// Attendants returns the authoritative attendant set for the snapshot
// refresh of the attendant cache.
func (m *MongoDB) Attendants(ctx context.Context) ([]entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var attendants []entity.Attendant
	if err = cursor.All(ctx, &attendants); err != nil {
		return nil, err
	}
	return attendants, nil
}

// CreateAttendant persists a new attendant and assigns its id.
func (m *MongoDB) CreateAttendant(ctx context.Context, attendant *entity.Attendant) (*entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	attendant.AttendantID, err = m.nextSequence(ctx, connection, "attendant")
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(attendantsCollection)
	if _, err = collection.InsertOne(ctx, attendant); err != nil {
		return nil, err
	}
	return attendant, nil
}
