/*
Package blocm implements a region container format which persists a
fixed 32x32 grid of optional, independently compressed chunk documents
in a single stream.

Data Structure Documentation

Region

A region starts with two fixed 4096-byte header sectors followed by
sector-aligned chunk envelopes. Chunk payloads never start before
sector 2.

    Region layout:
    +--------------+-----------------+-----------+-------+-----------+
    | offset table | timestamp table | chunk a   |  ...  | chunk n   |
    +--------------+-----------------+-----------+-------+-----------+
    |<- sector 0 ->|<-- sector 1 --->|<---- whole sectors from 2 --->|

    Offset table:
    +-----------------------+-----------------------+-------+--------------------------+
    | slot 0 word (4 bytes) | slot 1 word (4 bytes) |  ...  | slot 1023 word (4 bytes) |
    +-----------------------+-----------------------+-------+--------------------------+

Each big-endian offset word packs the chunk's first sector into its high
24 bits and the whole-sector payload length into its low 8 bits; a zero
word marks an empty slot. Slots are indexed x + 32*y for grid position
(x, y). The 8-bit length caps a single chunk at 255 sectors; writes
beyond that fail with ErrTooLarge rather than truncate. Readers derive
payload bounds from the envelope itself and treat an envelope
overflowing its recorded sector range as corrupt.

    Timestamp table:
    +------------------------+-------+---------------------------+
    | slot 0 stamp (4 bytes) |  ...  | slot 1023 stamp (4 bytes) |
    +------------------------+-------+---------------------------+

Timestamps are big-endian signed 32-bit Unix seconds, one per slot in
offset-table order, tracked whether or not the slot is populated.

Chunk envelope

A chunk envelope is the framed form of one compressed document, padded
with zeros to the next sector boundary when stored.

    +------------------+----------------------+------------------------+
    | length (4 bytes) | compression (1 byte) | payload (length - 1)   |
    +------------------+----------------------+------------------------+

The big-endian length counts the compression byte plus the payload. The
compression kind is carried to the Codec unmodified; RawBytes, the
built-in codec for pre-serialized chunks, understands gzip (1), zlib
(2), uncompressed (3) and snappy (4).
*/
package blocm
