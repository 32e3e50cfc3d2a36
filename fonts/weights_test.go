package fonts

import (
	"reflect"
	"testing"
)

func TestIsVariable(t *testing.T) {
	standard := []int{100, 200, 300, 400, 500, 600, 700}
	if IsVariable(standard) {
		t.Error("all-standard weight set must not be variable")
	}

	few := []int{380, 420, 455}
	if IsVariable(few) {
		t.Error("few distinct weights must not be variable")
	}

	variable := []int{380, 401, 422, 445, 470, 510, 555}
	if !IsVariable(variable) {
		t.Error("many non-standard weights must be variable")
	}
}

func TestNormalizeWeights_NonVariableSorted(t *testing.T) {
	got := NormalizeWeights([]int{700, 400, 400, 900})
	want := []int{400, 700, 900}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeWeights: got %v, want %v", got, want)
	}
}

func TestNormalizeWeights_ClustersPreferStandard(t *testing.T) {
	// 390..410 clusters to one value; 400 is the standard-closest member.
	got := NormalizeWeights([]int{390, 400, 410, 505, 510, 698, 702, 710})
	for _, w := range got {
		if w == 390 || w == 410 {
			t.Errorf("cluster kept non-preferred member %d in %v", w, got)
		}
	}
	if !contains(got, 400) {
		t.Errorf("cluster should keep 400: %v", got)
	}
}

func TestNormalizeWeights_TwentyNonStandard(t *testing.T) {
	// A variable font exposing 20 scattered non-standard weights must end
	// up with at most 10 values, all within [100, 900].
	var ws []int
	for i := 0; i < 20; i++ {
		ws = append(ws, 87+i*43)
	}

	got := NormalizeWeights(ws)
	if len(got) > 10 {
		t.Fatalf("normalized count: got %d, want <= 10 (%v)", len(got), got)
	}
	for _, w := range got {
		if w < 100 || w > 900 {
			t.Errorf("weight %d outside [100,900] in %v", w, got)
		}
	}
}

func TestNormalizeWeights_ClampsFewClusters(t *testing.T) {
	// Many distinct non-standard weights that collapse into a single
	// cluster: the lone representative must still land in [100, 900].
	var high, low []int
	for i := 0; i < 20; i++ {
		high = append(high, 901+2*i)
		low = append(low, 5+4*i)
	}

	if got := NormalizeWeights(high); len(got) != 1 || got[0] != 900 {
		t.Errorf("high cluster: got %v, want [900]", got)
	}
	if got := NormalizeWeights(low); len(got) != 1 || got[0] != 100 {
		t.Errorf("low cluster: got %v, want [100]", got)
	}
}

func TestNormalizeWeights_Distinct(t *testing.T) {
	got := NormalizeWeights([]int{400, 400, 400, 700})
	seen := map[int]bool{}
	for _, w := range got {
		if seen[w] {
			t.Fatalf("duplicate weight %d in %v", w, got)
		}
		seen[w] = true
	}
}

func contains(ws []int, w int) bool {
	for _, v := range ws {
		if v == w {
			return true
		}
	}
	return false
}
