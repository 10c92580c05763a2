package protocol

// realmFlagSpecifyBuild makes post-BC clients read version[3] + build(u16)
// after the realm id.
const realmFlagSpecifyBuild = 0x04

// RealmEntry is one realm as it appears on the wire.
type RealmEntry struct {
	ID         uint8
	Type       uint8
	Locked     bool
	Flags      uint8
	Name       string
	Address    string // "host:port"
	Population float32
	Characters uint8
	Timezone   uint8
	Version    [3]byte
	Build      uint16
}

// RealmListReply is the realm list in the layout expected by Build.
//
// post-BC: opcode, size(u16), u32 0, count(u16), entries, 0x10 0x00
// pre-BC:  opcode, size(u16), u32 0, count(u8),  entries, 0x00 0x02
//
// size counts every byte after the size field, trailer included.
type RealmListReply struct {
	Build  uint16
	Realms []RealmEntry
}

func (RealmListReply) Opcode() Opcode { return OpRealmList }

func (r RealmListReply) Size() int {
	postBC := IsPostBC(r.Build)
	n := 1 + 2 + 4
	if postBC {
		n += 2
	} else {
		n++
	}
	for i := range r.Realms {
		n += r.entrySize(&r.Realms[i], postBC)
	}
	return n + 2
}

func (r RealmListReply) entrySize(e *RealmEntry, postBC bool) int {
	// flags, name\0, address\0, population, characters, timezone, id
	n := 1 + len(e.Name) + 1 + len(e.Address) + 1 + 4 + 1 + 1 + 1
	if postBC {
		n += 2 // type, locked
		if e.Flags&realmFlagSpecifyBuild != 0 {
			n += 3 + 2
		}
	} else {
		n += 4 // type u32
	}
	return n
}

func (r RealmListReply) Encode(buf []byte) int {
	postBC := IsPostBC(r.Build)
	w := writer{buf: buf}

	w.putByte(byte(OpRealmList))
	w.putUint16(uint16(r.Size() - 3))
	w.putUint32(0)
	if postBC {
		w.putUint16(uint16(len(r.Realms)))
	} else {
		w.putByte(byte(len(r.Realms)))
	}

	for i := range r.Realms {
		e := &r.Realms[i]
		if postBC {
			w.putByte(e.Type)
			if e.Locked {
				w.putByte(1)
			} else {
				w.putByte(0)
			}
		} else {
			w.putUint32(uint32(e.Type))
		}
		w.putByte(e.Flags)
		w.putCString(e.Name)
		w.putCString(e.Address)
		w.putFloat32(e.Population)
		w.putByte(e.Characters)
		w.putByte(e.Timezone)
		if postBC {
			w.putByte(e.ID)
			if e.Flags&realmFlagSpecifyBuild != 0 {
				w.putBytes(e.Version[:])
				w.putUint16(e.Build)
			}
		} else {
			w.putByte(0)
		}
	}

	if postBC {
		w.putByte(0x10)
		w.putByte(0x00)
	} else {
		w.putByte(0x00)
		w.putByte(0x02)
	}
	return w.off
}
