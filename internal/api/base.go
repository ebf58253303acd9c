package api

// DefaultBaseURL is the ESP root used when no config or flag names one.
const DefaultBaseURL = "http://localhost:8010"
