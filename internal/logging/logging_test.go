package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, "debug", "json")
	require.NoError(t, err)
	t.Cleanup(func() {
		logger.SetFormatter(&logrus.TextFormatter{})
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.InfoLevel)
	})

	logger.WithField("x", 3).Debug("pixel drawn")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pixel drawn", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(3), entry["x"])
}

func TestSetup_Errors(t *testing.T) {
	_, err := Setup(nil, "loud", "text")
	assert.ErrorContains(t, err, `invalid log level "loud"`)

	_, err = Setup(nil, "info", "xml")
	assert.ErrorContains(t, err, `invalid log format "xml"`)
}
