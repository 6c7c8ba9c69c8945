package repository

import (
	"CallService/entity"
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Sectors returns the authoritative sector set. The sector cache
// replaces its snapshot with this result on every refresh tick.
func (m *MongoDB) Sectors(ctx context.Context) ([]entity.Sector, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sectorsCollection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var sectors []entity.Sector
	if err = cursor.All(ctx, &sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}

// CreateSector persists a new sector and assigns its id.
func (m *MongoDB) CreateSector(ctx context.Context, sector *entity.Sector) (*entity.Sector, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	sector.SectorID, err = m.nextSequence(ctx, connection, "sector")
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(sectorsCollection)
	if _, err = collection.InsertOne(ctx, sector); err != nil {
		return nil, err
	}
	return sector, nil
}
