package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_CreateThenGetData(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		errorExpected bool
	}{
		{name: "root child", path: "/a"},
		{name: "nested child", path: "/a/b"},
		{name: "missing parent", path: "/missing/child", errorExpected: true},
		{name: "invalid path", path: "a", errorExpected: true},
		{name: "root itself", path: "/", errorExpected: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := NewTree()
			if test.name == "nested child" {
				_, err := tree.Create("/a", []byte("parent"), false, false, 1)
				require.NoError(t, err)
			}
			full, err := tree.Create(test.path, []byte("data"), false, false, 1)
			if test.errorExpected {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.path, full)

			data, version, err := tree.GetData(test.path)
			require.NoError(t, err)
			assert.Equal(t, []byte("data"), data)
			assert.Equal(t, int64(0), version)
		})
	}
}

func TestTree_CreateSequential(t *testing.T) {
	tree := NewTree()
	first, err := tree.Create("/node", nil, true, false, 1)
	require.NoError(t, err)
	second, err := tree.Create("/node", nil, true, false, 1)
	require.NoError(t, err)
	assert.Equal(t, "/node_0", first)
	assert.Equal(t, "/node_1", second)
}

func TestTree_CreateUnderEphemeralFails(t *testing.T) {
	tree := NewTree()
	_, err := tree.Create("/a", nil, false, true, 1)
	require.NoError(t, err)
	_, err = tree.Create("/a/b", nil, false, false, 1)
	require.Error(t, err)
}

func TestTree_DeleteRequiresLeaf(t *testing.T) {
	tree := NewTree()
	_, err := tree.Create("/a", nil, false, false, 1)
	require.NoError(t, err)
	_, err = tree.Create("/a/b", nil, false, false, 1)
	require.NoError(t, err)

	err = tree.Delete("/a", -1)
	require.Error(t, err)

	err = tree.Delete("/a/b", -1)
	require.NoError(t, err)
	err = tree.Delete("/a", -1)
	require.NoError(t, err)

	exists, err := tree.Exists("/a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTree_DeleteMissingIsNoop(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.Delete("/missing", -1))
}

func TestTree_SetDataVersionCheck(t *testing.T) {
	tree := NewTree()
	_, err := tree.Create("/a", []byte("v0"), false, false, 1)
	require.NoError(t, err)

	err = tree.SetData("/a", []byte("v1"), 5)
	require.Error(t, err)

	err = tree.SetData("/a", []byte("v1"), 0)
	require.NoError(t, err)

	data, version, err := tree.GetData("/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
	assert.Equal(t, int64(1), version)

	require.NoError(t, tree.SetData("/a", []byte("v2"), -1))
}

func TestTree_GetChildren(t *testing.T) {
	tree := NewTree()
	_, err := tree.Create("/a", nil, false, false, 1)
	require.NoError(t, err)
	_, err = tree.Create("/a/b", nil, false, false, 1)
	require.NoError(t, err)
	_, err = tree.Create("/a/c", nil, false, false, 1)
	require.NoError(t, err)

	children, err := tree.GetChildren("/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, children)
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{path: "/a", valid: true},
		{path: "/a/b", valid: true},
		{path: "/", valid: false},
		{path: "a", valid: false},
		{path: "/a/", valid: false},
		{path: "/a//b", valid: false},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			err := ValidatePath(test.path)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsValidVersion(t *testing.T) {
	assert.True(t, IsValidVersion(-1, 42))
	assert.True(t, IsValidVersion(3, 3))
	assert.False(t, IsValidVersion(3, 4))
}
