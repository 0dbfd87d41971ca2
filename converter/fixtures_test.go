package converter

import (
	"reflect"
	"time"
)

const testPkg = "github.com/vitalvas/schemagen/converter"

type Node struct {
	Name     string `json:"name"`
	Children []Node `json:"children"`
}

type TreeNode struct {
	Value  int       `json:"value"`
	Parent *TreeNode `json:"parent,omitempty" openapi:"ref,description=Owning node"`
}

type A struct {
	B *B `json:"b"`
}

type B struct {
	A *A `json:"a"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Payload struct {
	Data string `json:"data"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type Flux[T any] struct {
	ch <-chan T
}

func (Flux[T]) OpenAPIBoundType() reflect.Type { return reflect.TypeFor[T]() }

type Future[T any] struct {
	result *T
}

func (*Future[T]) OpenAPIBoundType() reflect.Type { return reflect.TypeFor[T]() }

type Envelope[T any] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
}

type Opaque[T any] struct{}

// Generic instantiations over function-local types carry mangled names, so
// types used as type arguments live at package level.
type Thread struct {
	Title   string         `json:"title"`
	Replies Flux[Thread]   `json:"replies"`
	Latest  Future[Thread] `json:"latest"`
}

type Feed struct {
	Updates Flux[User]   `json:"updates"`
	Pinned  Future[User] `json:"pinned"`
	Raw     Flux[any]    `json:"raw"`
}

type Boxed[T any] struct{}

func (Boxed[T]) OpenAPIBoundType() reflect.Type { return reflect.TypeFor[T]() }

type Panicky struct{}

func (*Panicky) OpenAPIBoundType() reflect.Type { panic("boom") }

type Status string

func (Status) OpenAPIEnum() []any { return []any{"open", "closed"} }

type Level int

func (Level) OpenAPIEnum() []any { return []any{1, 2, 3} }

type Color struct {
	RGB string
}

func (Color) OpenAPIEnum() []any { return []any{"red", "green"} }

type BrokenEnum struct{}

func (*BrokenEnum) OpenAPIEnum() []any { panic("broken") }

type Ticket struct {
	Status Status `json:"status"`
	Color  Color  `json:"color"`
}

type Base struct {
	ID string `json:"id"`
}

type WithBase struct {
	Base
	Name string `json:"name"`
}

type WithPtrBase struct {
	*Base
	Name string `json:"name"`
}

type Sample struct {
	Title string `json:"title"`
}

func (Sample) OpenAPIExample() any { return Sample{Title: "hello"} }

type Tagged struct {
	Email    string    `json:"email" openapi:"format=email,minLength=3,maxLength=64,description=Contact"`
	Age      int       `json:"age,omitempty" openapi:"minimum=0,maximum=150,example=42"`
	Count    int       `json:"count,string"`
	Nick     *string   `json:"nick"`
	Role     string    `json:"role" openapi:"enum=admin|user"`
	Skip     string    `json:"-"`
	hidden   string    //nolint:unused
	Owner    User      `json:"owner" openapi:"description=Owner"`
	Created  time.Time `json:"created"`
	Callback func()    `json:"-"`
	Handler  func()    `json:"handler"`
	Labels   map[string]string
	Codes    map[int]string `json:"codes"`
	Raw      []byte         `json:"raw"`
	Events   chan int       `json:"events"`
}

type Tree map[string]Tree

type List []List

type Ring [2]*Ring

type Pipe chan Pipe

type Link *Link

type Grove struct {
	Root  Tree `json:"root"`
	Items List `json:"items"`
}

type Blob []byte
