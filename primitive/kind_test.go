package primitive_test

import (
	"fmt"
	"reflect"
	"time"

	"shape-mapper/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Celsius float64
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Celsius(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf([]byte(nil))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindFloat64
	// KindBytes
	// KindDuration
	// KindTime
	// KindEnum(0)
}

func ExampleKindEnum_Bits() {
	fmt.Println(primitive.KindInt8.Bits(), primitive.KindUint32.Bits(), primitive.KindFloat64.Bits())
	// Output:
	// 8 32 64
}
