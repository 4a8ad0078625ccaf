package domain

// KeyPrefix is the default namespace for every key civicdex writes to the store.
const KeyPrefix = "civicdex:"

// DefaultThreshold is the similarity at or above which a complaint counts as a duplicate.
const DefaultThreshold = 0.8

// DefaultMaxFeatures caps the fitted vocabulary size.
const DefaultMaxFeatures = 10000
