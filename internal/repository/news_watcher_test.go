package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewsEventFromDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	evt := NewsEventFromDocument(bson.M{
		"_id":       oid,
		"title":     "Launch",
		"timestamp": primitive.NewDateTimeFromTime(at),
	})

	assert.Equal(t, oid.Hex(), evt.ID)
	assert.Equal(t, "Launch", evt.Title)
	assert.Equal(t, "2024-05-01T12:00:00Z", evt.Timestamp)
}

func TestNewsEventFromDocument_PassesRawTimestamp(t *testing.T) {
	evt := NewsEventFromDocument(bson.M{"_id": "n1", "title": "x", "timestamp": "yesterday"})
	assert.Equal(t, "n1", evt.ID)
	assert.Equal(t, "yesterday", evt.Timestamp)

	evt = NewsEventFromDocument(bson.M{"_id": "n2"})
	assert.Nil(t, evt.Timestamp)
	assert.Empty(t, evt.Title)
}

func TestKeyFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "u1"}, keyFilter("u1"))

	oid := primitive.NewObjectID()
	f := keyFilter(oid.Hex())
	in := f["_id"].(bson.M)["$in"].(bson.A)
	assert.Equal(t, oid.Hex(), in[0])
	assert.Equal(t, oid, in[1])
}
