package noise

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash(42, 7, 1234)
	b := Hash(42, 7, 1234)
	if a != b {
		t.Fatalf("same key hashed to %#x and %#x", a, b)
	}
}

func TestHashKeySeparation(t *testing.T) {
	base := Hash(42, 7, 1234)
	if Hash(43, 7, 1234) == base {
		t.Fatal("seed change did not change the hash")
	}
	if Hash(42, 8, 1234) == base {
		t.Fatal("generation change did not change the hash")
	}
	if Hash(42, 7, 1235) == base {
		t.Fatal("index change did not change the hash")
	}
}

func TestUniformRange(t *testing.T) {
	for i := uint64(0); i < 10000; i++ {
		u := Uniform(1, 1, i)
		if u < 0 || u >= 1 {
			t.Fatalf("draw for index %d out of [0,1): %v", i, u)
		}
	}
}

func TestUniformMean(t *testing.T) {
	const n = 100000
	var sum float64
	for i := uint64(0); i < n; i++ {
		sum += Uniform(99, 0, i)
	}
	mean := sum / n
	if mean < 0.49 || mean > 0.51 {
		t.Fatalf("mean of %d draws is %v, want about 0.5", n, mean)
	}
}

func TestBelowZeroProbability(t *testing.T) {
	for i := uint64(0); i < 1000; i++ {
		if Below(5, 3, i, 0) {
			t.Fatalf("p=0 drew true at index %d", i)
		}
		if Below(5, 3, i, -0.5) {
			t.Fatalf("negative p drew true at index %d", i)
		}
	}
}

func TestBelowOneProbability(t *testing.T) {
	for i := uint64(0); i < 1000; i++ {
		if !Below(5, 3, i, 1) {
			t.Fatalf("p=1 drew false at index %d", i)
		}
	}
}
