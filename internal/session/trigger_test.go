package session

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfdstack/wfdcast/internal/wfd"
)

func TestClassify_NonSetParameterIsNone(t *testing.T) {
	msg := wfd.NewRequest(wfd.KindGetParameter, "rtsp://localhost/wfd1.0", 0)
	require.Equal(t, ClassNone, Classify(msg))
}

func TestClassify_BareTriggerMethodPropertyIsM5(t *testing.T) {
	cases := []struct {
		trigger wfd.TriggerMethod
		want    Classification
	}{
		{wfd.TriggerSetup, ClassM5Setup},
		{wfd.TriggerPlay, ClassM5Play},
		{wfd.TriggerPause, ClassM5Pause},
		{wfd.TriggerTeardown, ClassM5Teardown},
	}
	for _, tc := range cases {
		msg := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
		msg.Payload.SetProperty(&wfd.TriggerMethodProperty{Method: tc.trigger})
		require.Equal(t, tc.want, Classify(msg), "trigger %s", tc.trigger)
	}
}

func TestClassify_PresentationURLIsM4(t *testing.T) {
	msg := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
	msg.Payload.SetProperty(&wfd.PresentationURL{URL1: "rtsp://localhost/wfd1.0"})
	require.Equal(t, ClassM4, Classify(msg))
}

func TestClassify_EmptySetParameterIsM4(t *testing.T) {
	msg := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
	require.Equal(t, ClassM4, Classify(msg))
}

func TestClassify_TriggerMethodAlongsideOtherPropertiesIsM4(t *testing.T) {
	// A trigger property sharing the payload with anything else no
	// longer reads as a bare M5 trigger.
	msg := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
	msg.Payload.SetProperty(&wfd.TriggerMethodProperty{Method: wfd.TriggerPlay})
	msg.Payload.SetProperty(&wfd.PresentationURL{URL1: "rtsp://localhost/wfd1.0"})
	require.Equal(t, ClassM4, Classify(msg))
}
