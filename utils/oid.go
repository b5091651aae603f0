package utils

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

func Oid(hex string) (bson.ObjectID, error) {
	return bson.ObjectIDFromHex(hex)
}

// HexIDs renders ids in their string form, keeping order. A nil slice
// becomes an empty one so JSON never carries null.
func HexIDs(ids []bson.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
