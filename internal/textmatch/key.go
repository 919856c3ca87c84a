package textmatch

// KeySeparator joins song and artist in a comparison key.
const KeySeparator = " - "

// Key builds the comparison key for a song/artist pair.
func Key(song, artist string) string {
	return song + KeySeparator + artist
}
