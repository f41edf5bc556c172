package vxlantable

import (
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/tj/assert"
	"k8s.io/apimachinery/pkg/labels"
)

func TestNew(t *testing.T) {
	cases := map[string]struct {
		offset, max int64
		expectedErr bool
	}{
		"Normal":        {offset: 10000, max: 20000},
		"Full":          {offset: 0, max: MaxVNI + 1},
		"TooLarge":      {offset: 0, max: MaxVNI + 2, expectedErr: true},
		"NegativeStart": {offset: -1, max: 10, expectedErr: true},
		"Empty":         {offset: 10, max: 10, expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.offset, tc.max, testr.New(t))
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClaim(t *testing.T) {
	r, err := New(10000, 10010, testr.New(t))
	assert.NoError(t, err)

	assert.NoError(t, r.Claim(10000, labels.Set{"vrf": "red"}))
	assert.Error(t, r.Claim(10000, nil))
	assert.Error(t, r.Claim(9999, nil))
	assert.Error(t, r.Claim(10010, nil))

	id, err := r.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, int64(10001), id)

	for i := 0; i < 9; i++ {
		_, err := r.ClaimDynamic(labels.Set{"vrf": "blue"})
		assert.NoError(t, err)
	}
	_, err = r.ClaimDynamic(nil)
	assert.Error(t, err)
	assert.True(t, r.Free().IsEmpty())
	assert.Equal(t, 10, r.Count())

	assert.NoError(t, r.Update(10005, labels.Set{"vrf": "red"}))
	sel, err := labels.Parse("vrf=red")
	assert.NoError(t, err)
	assert.Len(t, r.GetByLabel(sel), 2)

	assert.NoError(t, r.Release(10005))
	assert.True(t, r.IsFree(10005))
	d, err := r.Get(10000)
	assert.NoError(t, err)
	assert.Equal(t, "red", d.Get("vrf"))
}
