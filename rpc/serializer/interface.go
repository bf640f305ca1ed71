package serializer

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/tStore/rpc/common"
)

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters
	// It returns an error if any
	Deserialize(b []byte, msg *common.Message) error
}

// Names lists the names accepted by New
var Names = []string{"json", "gob", "binary"}

// New returns the serializer with the given name (json, gob, binary)
func New(name string) (IRPCSerializer, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSONSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	case "binary":
		return NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of json, gob, binary)", name)
	}
}
