package ul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblerSingleFragment(t *testing.T) {
	a := NewReassembler()
	data, complete, err := a.Feed(NewPDV(1, false, true, []byte("hello")))
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []byte("hello"), data)
	assert.False(t, a.Pending())
}

func TestReassemblerMultiFragment(t *testing.T) {
	a := NewReassembler()
	_, complete, err := a.Feed(NewPDV(1, false, false, []byte("hel")))
	require.NoError(t, err)
	assert.False(t, complete)
	assert.True(t, a.Pending())

	data, complete, err := a.Feed(NewPDV(1, false, true, []byte("lo")))
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, []byte("hello"), data)
	assert.False(t, a.Pending())
}

func TestReassemblerSeparatesCommandAndDatasetStreams(t *testing.T) {
	a := NewReassembler()
	_, cmdDone, _ := a.Feed(NewPDV(1, true, false, []byte("CMD")))
	_, dsDone, _ := a.Feed(NewPDV(1, false, false, []byte("DS")))
	assert.False(t, cmdDone)
	assert.False(t, dsDone)
	assert.True(t, a.Pending())

	cmdData, cmdDone, _ := a.Feed(NewPDV(1, true, true, []byte("AND")))
	assert.True(t, cmdDone)
	assert.Equal(t, []byte("CMDAND"), cmdData)

	dsData, dsDone, _ := a.Feed(NewPDV(1, false, true, []byte("ET")))
	assert.True(t, dsDone)
	assert.Equal(t, []byte("DSET"), dsData)
	assert.False(t, a.Pending())
}

func TestReassemblerSeparatesContexts(t *testing.T) {
	a := NewReassembler()
	data1, done1, _ := a.Feed(NewPDV(1, false, true, []byte("ctx1")))
	data3, done3, _ := a.Feed(NewPDV(3, false, true, []byte("ctx3")))
	assert.True(t, done1)
	assert.True(t, done3)
	assert.Equal(t, []byte("ctx1"), data1)
	assert.Equal(t, []byte("ctx3"), data3)
}

func TestFeedPDU(t *testing.T) {
	a := NewReassembler()
	p := &DataTF{Items: []PresentationDataValue{
		NewPDV(1, true, true, []byte("cmd")),
		NewPDV(1, false, false, []byte("par")),
		NewPDV(1, false, true, []byte("t")),
	}}
	var completed []string
	err := a.FeedPDU(p, func(contextID uint8, isCommand bool, data []byte) error {
		completed = append(completed, string(data))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd", "part"}, completed)
}

func TestFragmentStreamSplitsAndMarksLast(t *testing.T) {
	items := FragmentStream(1, false, []byte("0123456789"), 4)
	require.Len(t, items, 3)
	assert.Equal(t, []byte("0123"), items[0].Data)
	assert.False(t, items[0].IsLastFragment())
	assert.Equal(t, []byte("4567"), items[1].Data)
	assert.Equal(t, []byte("89"), items[2].Data)
	assert.True(t, items[2].IsLastFragment())
}

func TestFragmentStreamEmptyYieldsOnePDV(t *testing.T) {
	items := FragmentStream(1, true, nil, 4)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Data)
	assert.True(t, items[0].IsLastFragment())
	assert.True(t, items[0].IsCommand())
}
