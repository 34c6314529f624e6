package davtest

import "encoding/xml"

// Multistatus is the root element of a PROPFIND response.
type Multistatus struct {
	XMLName   xml.Name    `xml:"D:multistatus"`
	XMLNS     string      `xml:"xmlns:D,attr"`
	Responses []*Response `xml:"D:response"`
}

type Response struct {
	Href     string   `xml:"D:href"`
	Propstat Propstat `xml:"D:propstat"`
}

type Propstat struct {
	Prop   Prop   `xml:"D:prop"`
	Status string `xml:"D:status"`
}

type Prop struct {
	DisplayName   string       `xml:"D:displayname"`
	LastModified  string       `xml:"D:getlastmodified"`
	ContentLength int64        `xml:"D:getcontentlength,omitempty"`
	ContentType   string       `xml:"D:getcontenttype,omitempty"`
	ResourceType  ResourceType `xml:"D:resourcetype"`
}

// ResourceType carries an empty <D:collection/> for directories.
type ResourceType struct {
	Collection *struct{} `xml:"D:collection,omitempty"`
}
