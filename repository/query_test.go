package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"english", "English"},
		{"ENGLISH", "English"},
		{"eNgLiSh", "English"},
		{"  spanish ", "Spanish"},
		{"EN-us", "En-us"},
		{"new zealand sign", "New zealand sign"},
		{"ñandú", "Ñandú"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in))
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"kept", 4, 25, 4, 25},
		{"capped", 2, 1000, 2, MaxPageSize},
		{"huge page", 1000000000000000001, 10, MaxPage, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := ClampPage(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSz, size)
		})
	}
}

func TestTotalPagesAndOffset(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))

	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))

	page, size := ClampPage(math.MaxInt, MaxPageSize)
	assert.Positive(t, Offset(page, size))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, escapeLike(`100%_off\`))
	assert.Equal(t, "span", escapeLike("span"))
}
