package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ramekinOrigin = "https://ramekin.example"

func newTestOpener(t *testing.T) (*Opener, *syncChannel, *fakeHost) {
	t.Helper()
	channel := newSyncChannel()
	host := &fakeHost{}
	o := NewOpener(OpenerConfig{
		Channel:        channel,
		ExpectedOrigin: ramekinOrigin,
		HTML:           pageHTML,
		URL:            pageURL,
		Host:           host,
		Logger:         quiet(),
	})
	o.Attach()
	return o, channel, host
}

func TestOpener_SendsSnapshotOnReady(t *testing.T) {
	o, channel, _ := newTestOpener(t)

	channel.deliver(Envelope{Origin: ramekinOrigin, Source: "child", Data: Ready()})

	sent := channel.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, HTML(pageHTML, pageURL), sent[0].msg)
	assert.Equal(t, ramekinOrigin, sent[0].target, "snapshot only goes to the expected origin")
	assert.Equal(t, 1, o.Sent())
}

func TestOpener_IgnoresUnexpectedOrigin(t *testing.T) {
	o, channel, host := newTestOpener(t)
	evil := "https://evil.example"

	channel.deliver(Envelope{Origin: evil, Data: Ready()})
	channel.deliver(Envelope{Origin: evil, Data: HTML("<p>x</p>", evil)})
	channel.deliver(Envelope{Origin: evil, Data: ViewRecipe(evil)})
	channel.deliver(Envelope{Origin: evil, Data: Close()})

	assert.Empty(t, channel.sent())
	assert.Zero(t, host.removals())
	assert.Empty(t, host.windows())
	assert.True(t, o.Attached())
}

func TestOpener_CloseIsIdempotent(t *testing.T) {
	o, channel, host := newTestOpener(t)

	channel.deliver(Envelope{Origin: ramekinOrigin, Data: Close()})
	assert.Equal(t, 1, host.removals())
	assert.False(t, o.Attached())
	assert.Zero(t, channel.listening())

	// Already detached: neither a second close nor Detach does anything.
	o.handle(Envelope{Origin: ramekinOrigin, Data: Close()})
	o.Detach()
	assert.Equal(t, 1, host.removals())

	o.Attach()
	assert.False(t, o.Attached(), "a detached opener stays detached")
}

func TestOpener_ViewRecipeOpensWindow(t *testing.T) {
	_, channel, host := newTestOpener(t)

	channel.deliver(Envelope{Origin: ramekinOrigin, Data: ViewRecipe(ramekinOrigin + "/recipes/r1")})

	assert.Equal(t, []string{ramekinOrigin + "/recipes/r1"}, host.windows())
	assert.Zero(t, host.removals())
}
