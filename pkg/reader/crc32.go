package reader

// reversed form of the IEEE 802.3 polynomial
const crcPoly = 0xedb88320

var crcTable = makeCRCTable(crcPoly)

func makeCRCTable(poly uint32) *[256]uint32 {
	t := new([256]uint32)
	for i := range t {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = crc>>1 ^ poly
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}

// Update returns the result of adding the bytes in b to crc.
func Update(crc uint32, b []byte) uint32 {
	crc = ^crc
	for _, v := range b {
		crc = crcTable[byte(crc)^v] ^ crc>>8
	}
	return ^crc
}

// Checksum returns the CRC-32 of b, as stored in zip headers.
func Checksum(b []byte) uint32 { return Update(0, b) }
