package ul

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tvbird-dicom/dicomcore/dicomio"
)

// PresentationContextRQ is one proposed presentation context inside an
// A-ASSOCIATE-RQ: an abstract syntax paired with the transfer syntaxes
// the proposer is willing to use for it.
type PresentationContextRQ struct {
	ID               uint8
	AbstractSyntax   string
	TransferSyntaxes []string
}

// Presentation context acceptance results (PS3.8 Table 9-18).
const (
	ResultAcceptance                   uint8 = 0
	ResultUserRejection                uint8 = 1
	ResultProviderRejection            uint8 = 2
	ResultAbstractSyntaxNotSupported   uint8 = 3
	ResultTransferSyntaxesNotSupported uint8 = 4
)

// PresentationContextAC is one accepted-or-rejected presentation
// context inside an A-ASSOCIATE-AC, echoing the RQ's ID.
type PresentationContextAC struct {
	ID             uint8
	Result         uint8
	TransferSyntax string
}

// RoleSelection negotiates SCU/SCP role per abstract syntax (item 0x54,
// PS3.7 D.3.3.4).
type RoleSelection struct {
	AbstractSyntax string
	SCURole        bool
	SCPRole        bool
}

// AsyncOpsWindow negotiates the maximum number of outstanding
// operations/sub-operations invoked/performed (item 0x53, PS3.7 D.3.3.3).
type AsyncOpsWindow struct {
	MaxOperationsInvoked   uint16
	MaxOperationsPerformed uint16
}

// ExtendedNegotiation carries a service-class-specific sub-item (item
// 0x56, PS3.7 D.3.3.5), opaque to this codec.
type ExtendedNegotiation struct {
	AbstractSyntax string
	Data           []byte
}

// UserInformation is the user-information item (0x50) of an
// A-ASSOCIATE-RQ/AC: maximum PDU length, implementation identity, and
// the optional negotiation sub-items.
type UserInformation struct {
	MaxPDULength           uint32
	ImplementationClassUID string
	ImplementationVersion  string
	AsyncOpsWindow         *AsyncOpsWindow
	RoleSelections         []RoleSelection
	ExtendedNegotiations   []ExtendedNegotiation
}

// AssociateRQ is an A-ASSOCIATE-RQ PDU (PS3.8 9.3.2).
type AssociateRQ struct {
	ProtocolVersion      uint16
	CalledAETitle        [16]byte
	CallingAETitle       [16]byte
	ApplicationContext   string
	PresentationContexts []PresentationContextRQ
	UserInfo             UserInformation
}

// AssociateAC is an A-ASSOCIATE-AC PDU (PS3.8 9.3.3): structurally
// identical to AssociateRQ on the wire, the AE-title fields carry no
// semantic meaning per the standard but are preserved verbatim.
type AssociateAC struct {
	ProtocolVersion      uint16
	CalledAETitle        [16]byte
	CallingAETitle       [16]byte
	ApplicationContext   string
	PresentationContexts []PresentationContextAC
	UserInfo             UserInformation
}

// Rejection results (PS3.8 Table 9-21).
const (
	RejectionPermanent uint8 = 1
	RejectionTransient uint8 = 2
)

// Rejection sources (PS3.8 Table 9-21).
const (
	RejectionSourceServiceUser         uint8 = 1
	RejectionSourceServiceProviderACSE uint8 = 2
	RejectionSourceServiceProviderPres uint8 = 3
)

// AssociateRJ is an A-ASSOCIATE-RJ PDU (PS3.8 9.3.4).
type AssociateRJ struct {
	Result uint8
	Source uint8
	Reason uint8
}

func (p *AssociateRQ) Type() byte { return TypeAssociateRQ }

func (p *AssociateRQ) Encode(w io.Writer) error {
	var buf bytes.Buffer
	if err := encodeAssociateHeader(&buf, p.ProtocolVersion, p.CalledAETitle, p.CallingAETitle); err != nil {
		return err
	}
	if err := encodeItem(&buf, ItemApplicationContext, []byte(p.ApplicationContext)); err != nil {
		return err
	}
	for _, pc := range p.PresentationContexts {
		if err := encodePresentationContextRQ(&buf, pc); err != nil {
			return err
		}
	}
	if err := encodeUserInformation(&buf, p.UserInfo); err != nil {
		return err
	}
	if err := writeHeader(w, TypeAssociateRQ, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *AssociateRQ) decode(r io.Reader, strict bool) error {
	if err := decodeAssociateHeader(r, &p.ProtocolVersion, &p.CalledAETitle, &p.CallingAETitle, strict); err != nil {
		return err
	}
	return forEachItem(r, strict, func(itemType byte, data []byte) error {
		switch itemType {
		case ItemApplicationContext:
			if err := validateUID("ApplicationContext", string(data), strict); err != nil {
				return err
			}
			p.ApplicationContext = string(data)
		case ItemPresentationContextRQ:
			pc, err := decodePresentationContextRQ(data, strict)
			if err != nil {
				return err
			}
			p.PresentationContexts = append(p.PresentationContexts, pc)
		case ItemUserInformation:
			ui, err := decodeUserInformation(data, strict)
			if err != nil {
				return err
			}
			p.UserInfo = ui
		case ItemPresentationContextAC:
			return fmt.Errorf("%w: A-ASSOCIATE-RQ contains an AC-shaped presentation context", dicomio.ErrPDU)
		}
		return nil
	})
}

func (p *AssociateAC) Type() byte { return TypeAssociateAC }

func (p *AssociateAC) Encode(w io.Writer) error {
	var buf bytes.Buffer
	if err := encodeAssociateHeader(&buf, p.ProtocolVersion, p.CalledAETitle, p.CallingAETitle); err != nil {
		return err
	}
	if err := encodeItem(&buf, ItemApplicationContext, []byte(p.ApplicationContext)); err != nil {
		return err
	}
	for _, pc := range p.PresentationContexts {
		if err := encodePresentationContextAC(&buf, pc); err != nil {
			return err
		}
	}
	if err := encodeUserInformation(&buf, p.UserInfo); err != nil {
		return err
	}
	if err := writeHeader(w, TypeAssociateAC, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (p *AssociateAC) decode(r io.Reader, strict bool) error {
	if err := decodeAssociateHeader(r, &p.ProtocolVersion, &p.CalledAETitle, &p.CallingAETitle, strict); err != nil {
		return err
	}
	return forEachItem(r, strict, func(itemType byte, data []byte) error {
		switch itemType {
		case ItemApplicationContext:
			if err := validateUID("ApplicationContext", string(data), strict); err != nil {
				return err
			}
			p.ApplicationContext = string(data)
		case ItemPresentationContextAC:
			pc, err := decodePresentationContextAC(data, strict)
			if err != nil {
				return err
			}
			p.PresentationContexts = append(p.PresentationContexts, pc)
		case ItemUserInformation:
			ui, err := decodeUserInformation(data, strict)
			if err != nil {
				return err
			}
			p.UserInfo = ui
		}
		return nil
	})
}

func (p *AssociateRJ) Type() byte { return TypeAssociateRJ }

func (p *AssociateRJ) Encode(w io.Writer) error {
	if err := writeHeader(w, TypeAssociateRJ, 4); err != nil {
		return err
	}
	body := []byte{0, p.Result, p.Source, p.Reason}
	_, err := w.Write(body)
	return err
}

func (p *AssociateRJ) decode(r io.Reader, strict bool) error {
	var body [4]byte
	if _, err := io.ReadFull(r, body[:]); err != nil {
		return err
	}
	p.Result, p.Source, p.Reason = body[1], body[2], body[3]
	return nil
}

func encodeAssociateHeader(w io.Writer, protocolVersion uint16, called, calling [16]byte) error {
	var fixed [68]byte
	binary.BigEndian.PutUint16(fixed[0:2], protocolVersion)
	copy(fixed[4:20], called[:])
	copy(fixed[20:36], calling[:])
	_, err := w.Write(fixed[:])
	return err
}

func decodeAssociateHeader(r io.Reader, protocolVersion *uint16, called, calling *[16]byte, strict bool) error {
	var fixed [68]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return err
	}
	*protocolVersion = binary.BigEndian.Uint16(fixed[0:2])
	copy(called[:], fixed[4:20])
	copy(calling[:], fixed[20:36])
	if err := validateAETitleStrict("called", *called, strict); err != nil {
		return err
	}
	if err := validateAETitleStrict("calling", *calling, strict); err != nil {
		return err
	}
	return nil
}

func forEachItem(r io.Reader, strict bool, fn func(itemType byte, data []byte) error) error {
	for {
		itemType, data, err := readItem(r, strict)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(itemType, data); err != nil {
			return err
		}
	}
}

func encodePresentationContextRQ(w io.Writer, pc PresentationContextRQ) error {
	var buf bytes.Buffer
	buf.WriteByte(pc.ID)
	buf.Write(make([]byte, 3))
	if err := encodeItem(&buf, ItemAbstractSyntax, []byte(pc.AbstractSyntax)); err != nil {
		return err
	}
	for _, ts := range pc.TransferSyntaxes {
		if err := encodeItem(&buf, ItemTransferSyntax, []byte(ts)); err != nil {
			return err
		}
	}
	return encodeItem(w, ItemPresentationContextRQ, buf.Bytes())
}

func decodePresentationContextRQ(data []byte, strict bool) (PresentationContextRQ, error) {
	var pc PresentationContextRQ
	if len(data) < 4 {
		return pc, fmt.Errorf("%w: presentation context RQ too short", dicomio.ErrPDU)
	}
	pc.ID = data[0]
	err := forEachItem(bytes.NewReader(data[4:]), strict, func(itemType byte, sub []byte) error {
		switch itemType {
		case ItemAbstractSyntax:
			if err := validateUID("AbstractSyntax", string(sub), strict); err != nil {
				return err
			}
			pc.AbstractSyntax = string(sub)
		case ItemTransferSyntax:
			if err := validateUID("TransferSyntax", string(sub), strict); err != nil {
				return err
			}
			pc.TransferSyntaxes = append(pc.TransferSyntaxes, string(sub))
		}
		return nil
	})
	return pc, err
}

func encodePresentationContextAC(w io.Writer, pc PresentationContextAC) error {
	var buf bytes.Buffer
	buf.WriteByte(pc.ID)
	buf.WriteByte(0)
	buf.WriteByte(pc.Result)
	buf.WriteByte(0)
	if pc.Result == ResultAcceptance {
		if err := encodeItem(&buf, ItemTransferSyntax, []byte(pc.TransferSyntax)); err != nil {
			return err
		}
	}
	return encodeItem(w, ItemPresentationContextAC, buf.Bytes())
}

func decodePresentationContextAC(data []byte, strict bool) (PresentationContextAC, error) {
	var pc PresentationContextAC
	if len(data) < 4 {
		return pc, fmt.Errorf("%w: presentation context AC too short", dicomio.ErrPDU)
	}
	pc.ID = data[0]
	pc.Result = data[2]
	err := forEachItem(bytes.NewReader(data[4:]), strict, func(itemType byte, sub []byte) error {
		if itemType == ItemTransferSyntax {
			if err := validateUID("TransferSyntax", string(sub), strict); err != nil {
				return err
			}
			pc.TransferSyntax = string(sub)
		}
		return nil
	})
	return pc, err
}

func encodeUserInformation(w io.Writer, ui UserInformation) error {
	var buf bytes.Buffer
	if ui.MaxPDULength > 0 {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], ui.MaxPDULength)
		if err := encodeItem(&buf, ItemMaxLength, lenBuf[:]); err != nil {
			return err
		}
	}
	if ui.ImplementationClassUID != "" {
		if err := encodeItem(&buf, ItemImplementationClassUID, []byte(ui.ImplementationClassUID)); err != nil {
			return err
		}
	}
	if ui.AsyncOpsWindow != nil {
		var body [4]byte
		binary.BigEndian.PutUint16(body[0:2], ui.AsyncOpsWindow.MaxOperationsInvoked)
		binary.BigEndian.PutUint16(body[2:4], ui.AsyncOpsWindow.MaxOperationsPerformed)
		if err := encodeItem(&buf, ItemAsyncOpsWindow, body[:]); err != nil {
			return err
		}
	}
	for _, rs := range ui.RoleSelections {
		if err := encodeRoleSelection(&buf, rs); err != nil {
			return err
		}
	}
	if ui.ImplementationVersion != "" {
		if err := encodeItem(&buf, ItemImplementationVersion, []byte(ui.ImplementationVersion)); err != nil {
			return err
		}
	}
	for _, en := range ui.ExtendedNegotiations {
		if err := encodeExtendedNegotiation(&buf, en); err != nil {
			return err
		}
	}
	return encodeItem(w, ItemUserInformation, buf.Bytes())
}

func encodeRoleSelection(w io.Writer, rs RoleSelection) error {
	var buf bytes.Buffer
	var uidLen [2]byte
	binary.BigEndian.PutUint16(uidLen[:], uint16(len(rs.AbstractSyntax)))
	buf.Write(uidLen[:])
	buf.WriteString(rs.AbstractSyntax)
	buf.WriteByte(boolToByte(rs.SCURole))
	buf.WriteByte(boolToByte(rs.SCPRole))
	return encodeItem(w, ItemRoleSelection, buf.Bytes())
}

func decodeRoleSelection(data []byte, strict bool) (RoleSelection, error) {
	var rs RoleSelection
	if len(data) < 2 {
		return rs, fmt.Errorf("%w: role selection item too short", dicomio.ErrPDU)
	}
	uidLen := int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) < 2+uidLen+2 {
		return rs, fmt.Errorf("%w: role selection item truncated", dicomio.ErrPDU)
	}
	rs.AbstractSyntax = string(data[2 : 2+uidLen])
	if err := validateUID("RoleSelection.AbstractSyntax", rs.AbstractSyntax, strict); err != nil {
		return rs, err
	}
	rs.SCURole = data[2+uidLen] != 0
	rs.SCPRole = data[2+uidLen+1] != 0
	return rs, nil
}

func encodeExtendedNegotiation(w io.Writer, en ExtendedNegotiation) error {
	var buf bytes.Buffer
	var uidLen [2]byte
	binary.BigEndian.PutUint16(uidLen[:], uint16(len(en.AbstractSyntax)))
	buf.Write(uidLen[:])
	buf.WriteString(en.AbstractSyntax)
	buf.Write(en.Data)
	return encodeItem(w, ItemExtendedNegotiation, buf.Bytes())
}

func decodeExtendedNegotiation(data []byte, strict bool) (ExtendedNegotiation, error) {
	var en ExtendedNegotiation
	if len(data) < 2 {
		return en, fmt.Errorf("%w: extended negotiation item too short", dicomio.ErrPDU)
	}
	uidLen := int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) < 2+uidLen {
		return en, fmt.Errorf("%w: extended negotiation item truncated", dicomio.ErrPDU)
	}
	en.AbstractSyntax = string(data[2 : 2+uidLen])
	if err := validateUID("ExtendedNegotiation.AbstractSyntax", en.AbstractSyntax, strict); err != nil {
		return en, err
	}
	en.Data = data[2+uidLen:]
	return en, nil
}

func decodeUserInformation(data []byte, strict bool) (UserInformation, error) {
	var ui UserInformation
	err := forEachItem(bytes.NewReader(data), strict, func(itemType byte, sub []byte) error {
		switch itemType {
		case ItemMaxLength:
			if len(sub) != 4 {
				return fmt.Errorf("%w: max-length item must be 4 bytes", dicomio.ErrPDU)
			}
			ui.MaxPDULength = binary.BigEndian.Uint32(sub)
		case ItemImplementationClassUID:
			if err := validateUID("ImplementationClassUID", string(sub), strict); err != nil {
				return err
			}
			ui.ImplementationClassUID = string(sub)
		case ItemImplementationVersion:
			ui.ImplementationVersion = string(sub)
		case ItemAsyncOpsWindow:
			if len(sub) != 4 {
				return fmt.Errorf("%w: async-ops-window item must be 4 bytes", dicomio.ErrPDU)
			}
			ui.AsyncOpsWindow = &AsyncOpsWindow{
				MaxOperationsInvoked:   binary.BigEndian.Uint16(sub[0:2]),
				MaxOperationsPerformed: binary.BigEndian.Uint16(sub[2:4]),
			}
		case ItemRoleSelection:
			rs, err := decodeRoleSelection(sub, strict)
			if err != nil {
				return err
			}
			ui.RoleSelections = append(ui.RoleSelections, rs)
		case ItemExtendedNegotiation:
			en, err := decodeExtendedNegotiation(sub, strict)
			if err != nil {
				return err
			}
			ui.ExtendedNegotiations = append(ui.ExtendedNegotiations, en)
		}
		return nil
	})
	return ui, err
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
