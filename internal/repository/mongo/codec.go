package mongo

import (
	"fmt"
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewRegistry returns the default registry with float64 decoding widened so that
// documents written by other tools (Decimal128, int32, int64) decode into float fields.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterKindDecoder(reflect.Float64, bsoncodec.ValueDecoderFunc(decodeFloat64))
	return reg
}

func decodeFloat64(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Kind() != reflect.Float64 {
		return bsoncodec.ValueDecoderError{Name: "decodeFloat64", Kinds: []reflect.Kind{reflect.Float64}, Received: val}
	}

	var f float64
	switch vr.Type() {
	case bsontype.Double:
		d, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		f = d
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		f = float64(i)
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		f = float64(i)
	case bsontype.Decimal128:
		d, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		f, err = decimalToFloat(d)
		if err != nil {
			return err
		}
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	case bsontype.Undefined:
		if err := vr.ReadUndefined(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into a float64", vr.Type())
	}

	val.SetFloat(f)
	return nil
}

func decimalToFloat(d primitive.Decimal128) (float64, error) {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("decimal128 %s: %w", d.String(), err)
	}
	return f, nil
}
