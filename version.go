package cloudshift

// Version is the current cloudshift version.
const Version = "0.1.0"
