package preprocess

// Version of this module, exposed for introspection only.
const Version = "0.1.0"
