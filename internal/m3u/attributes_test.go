package m3u

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAttribute(t *testing.T) {
	line := `#EXTINF:-1 tvg-id="bbc.uk" tvg-name="BBC One" tvg-logo="http://x/l.png" group-title="UK | News",BBC One`

	assert.Equal(t, "bbc.uk", extractAttribute(line, attrTvgID))
	assert.Equal(t, "BBC One", extractAttribute(line, attrTvgName))
	assert.Equal(t, "http://x/l.png", extractAttribute(line, attrTvgLogo))
	assert.Equal(t, "UK | News", extractAttribute(line, attrGroupTitle))
}

func TestExtractAttributeMissing(t *testing.T) {
	line := `#EXTINF:-1 tvg-name="BBC One",BBC One`
	assert.Equal(t, "", extractAttribute(line, attrTvgID))
}

func TestExtractAttributeEmptyValue(t *testing.T) {
	line := `#EXTINF:-1 tvg-id="" tvg-name="BBC One",BBC One`
	assert.Equal(t, "", extractAttribute(line, attrTvgID))
}

func TestExtractAttributeUnclosedQuote(t *testing.T) {
	line := `#EXTINF:-1 tvg-name="BBC One`
	assert.Equal(t, "", extractAttribute(line, attrTvgName))
}

func TestExtractAttributeKeyAtEndOfLine(t *testing.T) {
	line := `#EXTINF:-1 tvg-name="`
	assert.Equal(t, "", extractAttribute(line, attrTvgName))
}

func TestDisplayNamePrefersTvgName(t *testing.T) {
	line := `#EXTINF:-1 tvg-name="Proper Name",Trailing Name`
	assert.Equal(t, "Proper Name", displayName(line))
}

func TestDisplayNameFallsBackToTrailingText(t *testing.T) {
	line := `#EXTINF:-1 group-title="G",Trailing Name`
	assert.Equal(t, "Trailing Name", displayName(line))
}

func TestDisplayNameUsesLastComma(t *testing.T) {
	// The duration field and attribute values may themselves contain commas.
	line := `#EXTINF:-1 group-title="News, Sports",Channel Five`
	assert.Equal(t, "Channel Five", displayName(line))
}

func TestDisplayNameUnknownWhenEmpty(t *testing.T) {
	assert.Equal(t, "Unknown", displayName(`#EXTINF:-1,`))
	assert.Equal(t, "Unknown", displayName(`#EXTINF:-1`))
}
