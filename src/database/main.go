package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client *mongo.Client
}

var _init_ctx sync.Once
var _instance *DB

// ErrNotConnected is returned when an earlier dial attempt already failed.
var ErrNotConnected = errors.New("no mongodb connection established")

// New dials the MongoDB deployment once and hands out the shared client.
// Used by the mongo event store in factory deployments.
func New(uri string) (*mongo.Client, error) {
	var err error
	_init_ctx.Do(func() {
		_instance = new(DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		var client *mongo.Client
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return
		}
		err = client.Ping(ctx, nil)
		if err != nil {
			return
		}
		_instance.Client = client
	})
	if err != nil {
		return nil, err
	}
	if _instance == nil || _instance.Client == nil {
		return nil, ErrNotConnected
	}
	return _instance.Client, nil
}
