package streams

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radamhu/stremio-musortv/internal/catalog"
	"github.com/radamhu/stremio-musortv/internal/musor"
)

func TestStreams_MappedChannel(t *testing.T) {
	r := New(map[string]string{"RTL Klub": "https://example.org/rtl.m3u8"})

	id := catalog.MetaID(musor.Listing{
		Title:   "Mátrix",
		Start:   "2025-10-18T21:00:00",
		Channel: "RTL Klub",
	})
	got := r.Streams(id)
	require.Len(t, got, 1)
	require.Equal(t, "https://example.org/rtl.m3u8", got[0].URL)
	require.Equal(t, "Rtl Klub", got[0].Title)
	require.NotNil(t, got[0].BehaviorHints)
	require.Equal(t, "channel-rtl-klub", got[0].BehaviorHints.BingeGroup)
}

func TestStreams_UnmappedChannelIsEmptyNotNil(t *testing.T) {
	r := New(nil)
	got := r.Streams("musortv:m2:1760810400:hirado")
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestStreams_IMDbAndMalformedIDs(t *testing.T) {
	r := New(map[string]string{"RTL Klub": "https://example.org/rtl.m3u8"})
	require.Empty(t, r.Streams("tt0133093"))
	require.Empty(t, r.Streams("not-an-id"))
}

func TestNew_EnvOverridesConfig(t *testing.T) {
	t.Setenv("STREAM_RTL_KLUB", "https://override.example.org/rtl.m3u8")
	r := New(map[string]string{"RTL Klub": "https://example.org/rtl.m3u8"})

	got := r.Streams("musortv:rtl-klub:1760810400:matrix")
	require.Len(t, got, 1)
	require.Equal(t, "https://override.example.org/rtl.m3u8", got[0].URL)
}

func TestNew_SkipsEmptyURLs(t *testing.T) {
	r := New(map[string]string{"RTL Klub": ""})
	require.Zero(t, r.Channels())
}
