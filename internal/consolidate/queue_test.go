package consolidate

import (
	"reflect"
	"testing"

	"rfpmerge/internal"
)

func TestBuildInsertionQueue(t *testing.T) {
	queue := BuildInsertionQueue(
		[]int{1, 3},
		[]string{"Acme", "Blue"},
		map[string][]int{
			"Acme": {2, 3},
			"Blue": {2},
		},
	)

	want := []internal.QueueItem{
		{Column: 1, Source: internal.SourceTemplate},
		{Column: 2, Source: "Acme"},
		{Column: 2, Source: "Blue"},
		{Column: 3, Source: internal.SourceTemplate},
		{Column: 3, Source: "Acme"},
	}
	if !reflect.DeepEqual(queue, want) {
		t.Fatalf("queue=%v", queue)
	}
}

func TestBuildInsertionQueueDeterministic(t *testing.T) {
	supplierOnly := map[string][]int{"Acme": {5}, "Blue": {5}}
	first := BuildInsertionQueue([]int{5}, []string{"Acme", "Blue"}, supplierOnly)
	for i := 0; i < 10; i++ {
		again := BuildInsertionQueue([]int{5}, []string{"Acme", "Blue"}, supplierOnly)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("order changed: %v vs %v", first, again)
		}
	}
}

func TestBuildInsertionQueueEmpty(t *testing.T) {
	if queue := BuildInsertionQueue(nil, nil, nil); len(queue) != 0 {
		t.Fatalf("queue=%v", queue)
	}
}
