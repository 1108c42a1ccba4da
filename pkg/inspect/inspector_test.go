package inspect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

func TestInspectModel(t *testing.T) {
	insp := NewInspector(newRegistry(t))

	tree, err := insp.InspectModel("left")
	if err != nil {
		t.Fatalf("InspectModel: %v", err)
	}
	if tree.Key != "left" || tree.Name != "hand" {
		t.Errorf("tree = %s/%s", tree.Key, tree.Name)
	}

	root := tree.Root
	if !reflect.DeepEqual(root.Areas, []int{1}) {
		t.Errorf("root areas = %v, want [1]", root.Areas)
	}
	if len(root.Subregions) != 2 {
		t.Fatalf("len(Subregions) = %d, want 2", len(root.Subregions))
	}

	finger := root.Subregions[0]
	if finger.Name != "finger" {
		t.Fatalf("first subregion = %s, want finger", finger.Name)
	}
	if !reflect.DeepEqual(finger.Options, []string{"index", "middle"}) {
		t.Errorf("finger options = %v", finger.Options)
	}
	if !reflect.DeepEqual(finger.Areas, []int{2}) {
		t.Errorf("finger areas = %v, want [2]", finger.Areas)
	}
	if !reflect.DeepEqual(finger.Locations, []int{0}) {
		t.Errorf("finger locations = %v, want [0]", finger.Locations)
	}

	palm := root.Subregions[1]
	if len(palm.Axes) != 1 || len(palm.Axes[0].Values) != 0 {
		t.Errorf("palm axes = %+v", palm.Axes)
	}

	if _, err := insp.InspectModel("missing"); !errors.Is(err, manager.ErrModelNotFound) {
		t.Errorf("InspectModel(missing) error = %v", err)
	}
}

func TestInspectRegion(t *testing.T) {
	insp := NewInspector(newRegistry(t))

	info, err := insp.InspectRegion("left", address.MustParse(address.KindLocation, "hand, middle finger"))
	if err != nil {
		t.Fatalf("InspectRegion: %v", err)
	}
	if info.Name != "finger" {
		t.Errorf("Name = %s", info.Name)
	}

	_, err = insp.InspectRegion("left", address.MustParse(address.KindLocation, "hand, toe"))
	if !errors.Is(err, body.ErrUnresolvedRegion) {
		t.Errorf("error = %v, want ErrUnresolvedRegion", err)
	}
}

func TestSaved(t *testing.T) {
	insp := NewInspector(newRegistry(t))

	rows, err := insp.Saved("left", address.KindArea)
	if err != nil {
		t.Fatal(err)
	}
	want := []SavedRow{
		{GlobalID: 1, LocalID: 0, Address: "hand | palmar"},
		{GlobalID: 2, LocalID: 1, Address: "hand, index finger"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Saved = %+v, want %+v", rows, want)
	}

	rows, err = insp.Saved("right", address.KindLocation)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("right locations = %+v, want none", rows)
	}

	if _, err := insp.Saved("missing", address.KindArea); !errors.Is(err, manager.ErrModelNotFound) {
		t.Errorf("error = %v", err)
	}
}

func TestInspectorLocalize(t *testing.T) {
	insp := NewInspector(newRegistry(t))

	matches, err := insp.Localize("left",
		address.MustParse(address.KindLocation, "hand, index finger | palmar"),
		address.MustParse(address.KindLocation, "hand, middle finger | palmar"),
	)
	if err != nil {
		t.Fatal(err)
	}

	want := []Match{
		{GlobalID: 1, Address: "hand | palmar", Fully: true},
		{GlobalID: 2, Address: "hand, index finger", Fully: true},
		{GlobalID: 2, Address: "hand, index finger", Fully: false},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("matches = %+v, want %+v", matches, want)
	}
}

func TestNames(t *testing.T) {
	insp := NewInspector(newRegistry(t))
	tree, err := insp.InspectModel("left")
	if err != nil {
		t.Fatal(err)
	}

	wantRegions := []string{"finger", "hand", "index finger", "middle finger", "palm"}
	if got := RegionNames(tree); !reflect.DeepEqual(got, wantRegions) {
		t.Errorf("RegionNames = %v, want %v", got, wantRegions)
	}

	wantMods := []string{"dorsal", "palmar"}
	if got := ModifierNames(tree); !reflect.DeepEqual(got, wantMods) {
		t.Errorf("ModifierNames = %v, want %v", got, wantMods)
	}
}
