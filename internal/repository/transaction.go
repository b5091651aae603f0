package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Transactor runs a unit of work inside a Mongo session transaction.
// Transactions need a replica set or sharded cluster.
type Transactor struct {
	Client *mongo.Client
}

func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{Client: client}
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
