package model

// ConnID identifies a single live event-channel connection
type ConnID string
