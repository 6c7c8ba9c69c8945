package repository

import (
	"CallService/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateTransaction persists a new transaction and assigns its id.
func (m *MongoDB) CreateTransaction(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	transaction.TransactionID, err = m.nextSequence(ctx, connection, "transaction")
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(transactionsCollection)
	if _, err = collection.InsertOne(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// TransactionByID retrieves one transaction by numeric id.
func (m *MongoDB) TransactionByID(ctx context.Context, transactionID int64) (*entity.Transaction, error) {
	return m.findTransaction(ctx, bson.D{{Key: "transaction_id", Value: transactionID}})
}

// OpenTransactionByCustomer retrieves the customer's single
// non-finished transaction, if any.
func (m *MongoDB) OpenTransactionByCustomer(ctx context.Context, customerID int64) (*entity.Transaction, error) {
	return m.findTransaction(ctx, bson.D{
		{Key: "customer_id", Value: customerID},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.TransactionFinished}}},
	})
}

// OpenTransactionByAttendant retrieves the transaction the attendant is
// currently bound to.
func (m *MongoDB) OpenTransactionByAttendant(ctx context.Context, attendantID int64) (*entity.Transaction, error) {
	return m.findTransaction(ctx, bson.D{
		{Key: "attendant_id", Value: attendantID},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.TransactionFinished}}},
	})
}

func (m *MongoDB) findTransaction(ctx context.Context, filter bson.D) (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(transactionsCollection)

	var transaction entity.Transaction
	err = collection.FindOne(ctx, filter).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &transaction, nil
}

// SectorTransactionsNotProcessing returns all transactions in a sector
// whose status is not PROCESSING. The queue engine uses this set to
// determine which attendants are currently spoken for.
func (m *MongoDB) SectorTransactionsNotProcessing(ctx context.Context, sectorID int64) ([]entity.Transaction, error) {
	return m.findTransactions(ctx, bson.D{
		{Key: "sector_id", Value: sectorID},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.TransactionProcessing}}},
	}, nil)
}

// QueuedTransactionBySector returns the oldest ACTIVE, unassigned
// transaction waiting in a sector, or nil.
func (m *MongoDB) QueuedTransactionBySector(ctx context.Context, sectorID int64) (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(transactionsCollection)
	filter := bson.D{
		{Key: "sector_id", Value: sectorID},
		{Key: "status", Value: entity.TransactionActive},
		{Key: "attendant_id", Value: int64(0)},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "initiated", Value: 1}})

	var transaction entity.Transaction
	err = collection.FindOne(ctx, filter, opts).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &transaction, nil
}

// TransactionHistory returns finished and running transactions for one
// attendant, optionally narrowed to a single customer. Feeds the &list
// spreadsheet export.
func (m *MongoDB) TransactionHistory(ctx context.Context, attendantID, customerID int64) ([]entity.Transaction, error) {
	filter := bson.D{{Key: "attendant_id", Value: attendantID}}
	if customerID != 0 {
		filter = append(filter, bson.E{Key: "customer_id", Value: customerID})
	}
	sort := bson.D{{Key: "initiated", Value: 1}}
	return m.findTransactions(ctx, filter, sort)
}

func (m *MongoDB) findTransactions(ctx context.Context, filter bson.D, sort bson.D) ([]entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(transactionsCollection)
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var transactions []entity.Transaction
	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// UpdateTransaction replaces the stored transaction document.
func (m *MongoDB) UpdateTransaction(ctx context.Context, transaction *entity.Transaction) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(transactionsCollection)
	filter := bson.D{{Key: "transaction_id", Value: transaction.TransactionID}}
	update := bson.D{{Key: "$set", Value: transaction}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}
