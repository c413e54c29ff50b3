package model

import (
	"github.com/mongodb/anser/bsonutil"
	"go.mongodb.org/mongo-driver/bson"
)

// SystemIndexes holds the keys, options and the collection for an index.
// See
// https://docs.mongodb.com/manual/reference/method/db.collection.createIndex
// for more info.
type SystemIndexes struct {
	Keys       bson.D
	Options    bson.D
	Collection string
}

// GetRequiredIndexes returns required indexes for the benchwatch database.
func GetRequiredIndexes() []SystemIndexes {
	return []SystemIndexes{
		{
			Keys: bson.D{
				{Key: bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoProjectKey), Value: 1},
				{Key: bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoSuiteKey), Value: 1},
				{Key: benchmarkEntryDateKey, Value: 1},
			},
			Collection: benchmarkEntryCollection,
		},
		{
			Keys:       bson.D{{Key: bsonutil.GetDottedKeyName(benchmarkEntryInfoKey, benchmarkEntryInfoCommitIDKey), Value: 1}},
			Collection: benchmarkEntryCollection,
		},
		{
			Keys: bson.D{
				{Key: benchmarkSuiteProjectKey, Value: 1},
				{Key: benchmarkSuiteSuiteKey, Value: 1},
			},
			Collection: benchmarkSuiteCollection,
		},
		{
			Keys: bson.D{
				{Key: bsonutil.GetDottedKeyName(regressionAlertInfoKey, regressionAlertInfoProjectKey), Value: 1},
				{Key: bsonutil.GetDottedKeyName(regressionAlertInfoKey, regressionAlertInfoSuiteKey), Value: 1},
				{Key: regressionAlertCreatedAtKey, Value: -1},
			},
			Collection: regressionAlertCollection,
		},
	}
}
