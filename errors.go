package seapack

import (
	"errors"
)

var ErrInvalidGrid = errors.New("Error Invalid Grid Specification")
var ErrIngest = errors.New("Error Ingesting Source Data")
var ErrInvalidSource = errors.New("Error Invalid Grid Source File")
var ErrInvalidShapefile = errors.New("Error Invalid Shapefile")
var ErrUnsupportedShape = errors.New("Error Unsupported Shape Type")
var ErrCorruptRecord = errors.New("Error Corrupt Shapefile Record")
var ErrKeyLoad = errors.New("Error Loading Signing Key")
var ErrWrite = errors.New("Error Writing Pack")
var ErrCompress = errors.New("Error Compressing Part")
var ErrDecompress = errors.New("Error Decompressing Part")
var ErrCanonical = errors.New("Error Canonicalising Manifest")
var ErrMissingManifest = errors.New("Error Missing Manifest")
var ErrBadSignature = errors.New("Error Bad Manifest Signature")
var ErrPartCorrupt = errors.New("Error Corrupt Pack Part")
var ErrBadMask = errors.New("Error Bad Mask Values")
var ErrInvalidSidecar = errors.New("Error Invalid Mask Sidecar")
var ErrCreatePackTdb = errors.New("Error Creating Pack TileDB Array")
var ErrWritePackTdb = errors.New("Error Writing Pack TileDB Array")
