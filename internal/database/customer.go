package repository

import (
	"CallService/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerByWuid retrieves a customer by its chat identifier. Absence is
// returned as (nil, nil).
func (m *MongoDB) CustomerByWuid(ctx context.Context, wuid string) (*entity.Customer, error) {
	return m.findCustomer(ctx, bson.D{{Key: "wuid", Value: wuid}})
}

// CustomerByID retrieves a customer by its numeric id.
func (m *MongoDB) CustomerByID(ctx context.Context, customerID int64) (*entity.Customer, error) {
	return m.findCustomer(ctx, bson.D{{Key: "customer_id", Value: customerID}})
}

func (m *MongoDB) findCustomer(ctx context.Context, filter bson.D) (*entity.Customer, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(customersCollection)

	var customer entity.Customer
	err = collection.FindOne(ctx, filter).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &customer, nil
}

// CreateCustomer persists a new customer and assigns its id.
func (m *MongoDB) CreateCustomer(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	customer.CustomerID, err = m.nextSequence(ctx, connection, "customer")
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(customersCollection)
	if _, err = collection.InsertOne(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer replaces the stored customer document.
func (m *MongoDB) UpdateCustomer(ctx context.Context, customer *entity.Customer) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(customersCollection)
	filter := bson.D{{Key: "customer_id", Value: customer.CustomerID}}
	update := bson.D{{Key: "$set", Value: customer}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}

// Customers returns the full roster, used by the &customer export.
func (m *MongoDB) Customers(ctx context.Context) ([]entity.Customer, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(customersCollection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var customers []entity.Customer
	if err = cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}
